package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"

	"mousebridge/internal/types"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

var ErrNoDisplay = errors.New("no active display")

type Options struct {
	Display int
	Quality int // 1-100
}

// Screen reads display geometry and frames from the local desktop.
type Screen struct{}

func NewScreen() *Screen { return &Screen{} }

// Displays lists the bounds of every active display.
func (Screen) Displays() ([]types.Display, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, ErrNoDisplay
	}
	displays := make([]types.Display, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays = append(displays, types.Display{
			Index:  i,
			X:      b.Min.X,
			Y:      b.Min.Y,
			Width:  b.Dx(),
			Height: b.Dy(),
		})
	}
	return displays, nil
}

// Frame captures the configured display as base64 JPEG plus the cursor position.
func (Screen) Frame(opts Options) (types.ScreenUpdate, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return types.ScreenUpdate{}, ErrNoDisplay
	}
	d := opts.Display
	if d < 0 || d >= n {
		d = 0
	}
	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(d))
	if err != nil {
		return types.ScreenUpdate{}, fmt.Errorf("capture display %d: %w", d, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality(opts.Quality)}); err != nil {
		return types.ScreenUpdate{}, fmt.Errorf("encode frame: %w", err)
	}
	x, y := robotgo.GetMousePos()
	return types.ScreenUpdate{
		Image:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		MouseX: x,
		MouseY: y,
	}, nil
}

func quality(q int) int {
	if q <= 0 || q > 100 {
		return 80
	}
	return q
}
