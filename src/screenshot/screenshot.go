package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/kbinani/screenshot"

	"region-shot/src/process"
)

// TimestampLayout renders as YYYYMMDD-HHMMSS.
const TimestampLayout = "20060102-150405"

var ErrInvalidGeometry = errors.New("invalid geometry")

// Region is a screen rectangle in virtual-screen coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

var geometryPattern = regexp.MustCompile(`^\s*(-?\d+),(-?\d+)\s+(\d+)x(\d+)\s*$`)

// ParseGeometry reads the "X,Y WxH" form printed by slurp.
func ParseGeometry(geometry string) (Region, error) {
	m := geometryPattern.FindStringSubmatch(geometry)
	if m == nil {
		return Region{}, fmt.Errorf("%w: %q", ErrInvalidGeometry, geometry)
	}

	vals := make([]int, 4)
	for i := range vals {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Region{}, fmt.Errorf("%w: %q: %v", ErrInvalidGeometry, geometry, err)
		}
		vals[i] = n
	}

	region := Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if region.Width <= 0 || region.Height <= 0 {
		return Region{}, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidGeometry, region.Width, region.Height)
	}
	return region, nil
}

// BuildPath returns dir/YYYYMMDD-HHMMSS.png for now. Calls within the same
// second yield the same path.
func BuildPath(now time.Time, dir string) string {
	return filepath.Join(dir, now.Format(TimestampLayout)+".png")
}

// EnsureDir creates dir and any missing parents. Existing directories are fine.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// Capturer writes the pixels inside geometry to a PNG file at path.
type Capturer interface {
	Capture(ctx context.Context, geometry, path string) error
}

// CommandCapturer runs an external tool as `<Command> -g <geometry> <path>`.
// The exit status decides success.
type CommandCapturer struct {
	Runner  process.Runner
	Command string
	Timeout time.Duration
}

func (c CommandCapturer) Capture(ctx context.Context, geometry, path string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if _, err := c.Runner.Run(ctx, c.Command, "-g", geometry, path); err != nil {
		return fmt.Errorf("failed to capture region: %w", err)
	}
	return nil
}

// NativeCapturer grabs the region in-process through the X11/Windows/macOS
// screen APIs instead of an external tool.
type NativeCapturer struct {
	// Grab defaults to screenshot.CaptureRect.
	Grab func(image.Rectangle) (*image.RGBA, error)
	// Bounds defaults to the union of all active displays.
	Bounds func() (image.Rectangle, error)
}

func (c NativeCapturer) Capture(ctx context.Context, geometry, path string) error {
	region, err := ParseGeometry(geometry)
	if err != nil {
		return err
	}

	bounds := c.Bounds
	if bounds == nil {
		bounds = VirtualScreenBounds
	}
	screen, err := bounds()
	if err != nil {
		return err
	}
	rect := region.Rect().Intersect(screen)
	if rect.Empty() {
		return fmt.Errorf("%w: %s is outside the screen %v", ErrInvalidGeometry, region, screen)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	grab := c.Grab
	if grab == nil {
		grab = screenshot.CaptureRect
	}
	img, err := grab(rect)
	if err != nil {
		return fmt.Errorf("failed to capture region: %w", err)
	}

	return WritePNG(path, img)
}

// VirtualScreenBounds is the union of all active display bounds.
func VirtualScreenBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// WritePNG encodes img to path. A partially written file is removed.
func WritePNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
