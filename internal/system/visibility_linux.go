//go:build linux

package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const vtGetState = 0x5603 // VT_GETSTATE ioctl

// vtStat mirrors struct vt_stat from linux/vt.h.
type vtStat struct {
	active uint16
	signal uint16
	state  uint16
}

// VTVisibility reports whether the virtual terminal we draw on is the one being
// shown. Switching to another VT (Ctrl+Alt+Fn) makes the output invisible.
type VTVisibility struct {
	// VT is our terminal number; 0 means unknown and always visible.
	VT int
}

// NewVTVisibility detects our VT from stdin, e.g. /dev/tty3 -> 3.
func NewVTVisibility() *VTVisibility {
	return &VTVisibility{VT: detectVT()}
}

func (v *VTVisibility) Visible() bool {
	if v.VT <= 0 {
		return true
	}
	active, err := ActiveVT()
	if err != nil {
		return true
	}
	return active == v.VT
}

// ActiveVT returns the number of the foreground virtual terminal.
func ActiveVT() (int, error) {
	fd, err := unix.Open("/dev/tty0", unix.O_RDONLY|unix.O_NOCTTY, 0)
	if err != nil {
		return 0, fmt.Errorf("open /dev/tty0: %w", err)
	}
	defer unix.Close(fd)

	var st vtStat
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), vtGetState, uintptr(unsafe.Pointer(&st))); errno != 0 {
		return 0, fmt.Errorf("VT_GETSTATE: %w", errno)
	}
	return int(st.active), nil
}

func detectVT() int {
	target, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return 0
	}
	return parseVT(target)
}

// parseVT extracts n from "/dev/ttyN"; other devices (pts, serial) yield 0.
func parseVT(path string) int {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "tty") || filepath.Dir(path) != "/dev" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "tty"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
