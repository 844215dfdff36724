//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// consolePaths lists the active VT first, then the current-console alias.
var consolePaths = []string{"/dev/tty", "/dev/tty0"}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// SetGraphicsMode switches the active console to KD_GRAPHICS so the kernel stops
// drawing its text console (and blinking cursor) over the framebuffer.
func SetGraphicsMode() error { return setKDMode(kdGraphics, "KD_GRAPHICS") }

// RestoreTextMode puts the console back into KD_TEXT.
func RestoreTextMode() error { return setKDMode(kdText, "KD_TEXT") }

func setKDMode(mode int, name string) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("%s on %s: %w", name, p, err)
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("%s failed: unknown error", name)
}

func HideCursor() error { return writeVT("\x1b[?25l") }
func ShowCursor() error { return writeVT("\x1b[?25h") }

func writeVT(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("write VT failed: %v", lastErr)
	}
	return fmt.Errorf("write VT failed: unknown error")
}

// EnterGraphics switches to graphics mode and hides the cursor, logging each
// step. The returned function undoes both; failures are logged, not returned.
func EnterGraphics(l logger) (restore func()) {
	logStep(l, "KD_GRAPHICS set", SetGraphicsMode())
	logStep(l, "cursor hidden", HideCursor())
	return func() {
		logStep(l, "cursor shown", ShowCursor())
		logStep(l, "KD_TEXT set", RestoreTextMode())
	}
}

func logStep(l logger, done string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%v", err)
		return
	}
	l.Infof("tty", "%s", done)
}
