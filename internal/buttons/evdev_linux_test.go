//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func keyPress(code uint16) []byte {
	tvSize := binary.Size(unix.Timeval{})
	rec := make([]byte, tvSize+8)
	binary.LittleEndian.PutUint16(rec[tvSize:], evKey)
	binary.LittleEndian.PutUint16(rec[tvSize+2:], code)
	binary.LittleEndian.PutUint32(rec[tvSize+4:], 1)
	return rec
}

func TestKeyboardReaderExitsOnHangup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event0")
	if err := unix.Mkfifo(path, 0o600); err != nil {
		t.Skipf("mkfifo: %v", err)
	}

	k := NewKeyboard(nil)
	k.Glob = filepath.Join(dir, "event*")
	if err := k.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = k.Stop() }()

	// Blocks until the reader has the FIFO open.
	opened := make(chan *os.File, 1)
	go func() {
		w, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			opened <- nil
			return
		}
		opened <- w
	}()
	var w *os.File
	select {
	case w = <-opened:
	case <-time.After(2 * time.Second):
		t.Fatal("reader never opened the device")
	}
	if w == nil {
		t.Fatal("open writer failed")
	}
	if _, err := w.Write(keyPress(keyP)); err != nil {
		t.Fatal(err)
	}
	_ = w.Close()

	select {
	case ev := <-k.Events():
		if ev != Pause {
			t.Errorf("event = %q, want %q", ev, Pause)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event before hangup")
	}

	exited := make(chan struct{})
	go func() {
		k.wg.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("reader still running after the writer hung up")
	}
}
