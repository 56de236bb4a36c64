package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

var ErrNotPNG = errors.New("not a PNG file")

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

var (
	initOnce sync.Once
	initErr  error

	// swapped in tests
	initFn  = clipboard.Init
	writeFn = func(data []byte) <-chan struct{} { return clipboard.Write(clipboard.FmtImage, data) }
)

func Init() error {
	initOnce.Do(func() { initErr = initFn() })
	return initErr
}

// Owner copies images to the clipboard and keeps them available. The
// contents are served from this process, so it has to stay alive until
// another client takes the selection over.
type Owner struct {
	// Hold bounds how long Wait keeps the process alive.
	Hold time.Duration

	mu   sync.Mutex
	lost <-chan struct{}
}

// CopyImage places the PNG at path on the system clipboard.
func (o *Owner) CopyImage(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("%s: %w", path, ErrNotPNG)
	}

	if err := Init(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lost = writeFn(data)
	return nil
}

// Wait blocks until the clipboard is taken by someone else, Hold elapses or
// ctx is done. It returns at once when nothing was copied.
func (o *Owner) Wait(ctx context.Context) {
	o.mu.Lock()
	lost := o.lost
	o.mu.Unlock()
	if lost == nil || o.Hold <= 0 {
		return
	}

	timer := time.NewTimer(o.Hold)
	defer timer.Stop()

	select {
	case <-lost:
	case <-timer.C:
	case <-ctx.Done():
	}
}
