package server

import (
	"sync"

	"mousebridge/internal/capture"
	"mousebridge/internal/discovery"
	"mousebridge/internal/types"
)

// fakeInjector records pointer actions around a fixed cursor.
type fakeInjector struct {
	mu       sync.Mutex
	x, y     int
	moves    [][2]int
	clicks   []string
	vscrolls []int
	hscrolls []int
	clickErr error
}

func (f *fakeInjector) Position() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y, nil
}

func (f *fakeInjector) MoveTo(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, [2]int{x, y})
	return nil
}

func (f *fakeInjector) Click(button string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, button)
	return nil
}

func (f *fakeInjector) Scroll(amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vscrolls = append(f.vscrolls, amount)
	return nil
}

func (f *fakeInjector) HScroll(amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hscrolls = append(f.hscrolls, amount)
	return nil
}

func (f *fakeInjector) snapshotMoves() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]int(nil), f.moves...)
}

func (f *fakeInjector) snapshotClicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.clicks...)
}

type fakePairing struct {
	info types.PairingInfo
	err  error
}

func (f *fakePairing) Discover() (types.PairingInfo, error) {
	if f.err != nil {
		return types.PairingInfo{}, f.err
	}
	return f.info, nil
}

var _ Pairing = (*discovery.Service)(nil)

type fakeScreen struct {
	displays  []types.Display
	frame     types.ScreenUpdate
	err       error
	lastFrame capture.Options
}

func (f *fakeScreen) Displays() ([]types.Display, error) { return f.displays, f.err }

func (f *fakeScreen) Frame(opts capture.Options) (types.ScreenUpdate, error) {
	f.lastFrame = opts
	return f.frame, f.err
}

var _ ScreenSource = (*capture.Screen)(nil)
