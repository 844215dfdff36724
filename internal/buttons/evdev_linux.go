//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const evKey = 0x01

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Keyboard watches Linux evdev devices under /dev/input/event* and turns key
// presses into Events. It is best-effort: without readable devices it logs
// and never emits.
type Keyboard struct {
	Logger logger
	Glob   string

	ch      chan Event
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped sync.Once
}

func NewKeyboard(l logger) *Keyboard {
	return &Keyboard{Logger: l, Glob: "/dev/input/event*", ch: make(chan Event, 8)}
}

func (k *Keyboard) Events() <-chan Event { return k.ch }

func (k *Keyboard) Start(ctx context.Context) error {
	paths, err := filepath.Glob(k.Glob)
	if err != nil || len(paths) == 0 {
		if k.Logger != nil {
			k.Logger.Infof("input", "no evdev devices found for keyboard control")
		}
		return nil
	}

	readCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	for _, path := range paths {
		k.wg.Add(1)
		go func(p string) {
			defer k.wg.Done()
			k.read(readCtx, p)
		}(path)
	}
	return nil
}

func (k *Keyboard) Stop() error {
	k.stopped.Do(func() {
		if k.cancel != nil {
			k.cancel()
		}
		k.wg.Wait()
	})
	return nil
}

func (k *Keyboard) read(ctx context.Context, path string) {
	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		revents := pollFds[0].Revents
		if revents&unix.POLLIN == 0 {
			// Hangup or error without pending data: the device is gone and
			// poll would keep returning immediately.
			if revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
				if k.Logger != nil {
					k.Logger.Infof("input", "%s went away (revents %#x)", path, revents)
				}
				return
			}
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			return
		}

		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			if typ != evKey || value != 1 {
				continue
			}
			ev, ok := eventForKey(code)
			if !ok {
				continue
			}
			if k.Logger != nil {
				k.Logger.Infof("input", "key %d: %s", code, ev)
			}
			select {
			case k.ch <- ev:
			case <-ctx.Done():
				return
			default:
				// Host is behind; drop rather than block the reader.
			}
		}
	}
}
