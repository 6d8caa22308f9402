package gateway

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"mousebridge/internal/clients"
	"mousebridge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const phone = "192.168.1.42"

func newTestGateway(t *testing.T, inj *mockInjector) *Gateway {
	t.Helper()
	return New(Config{
		Sessions: clients.NewManager(),
		Injector: inj,
		Logger:   zaptest.NewLogger(t),
	})
}

func TestGateway_RejectsUnconnected(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)

	assert.ErrorIs(t, g.Move(phone, types.MoveCommand{DX: 1}), ErrUnauthenticated)
	assert.ErrorIs(t, g.Click(phone, types.ClickCommand{}), ErrUnauthenticated)
	assert.ErrorIs(t, g.Scroll(phone, types.ScrollCommand{DY: 4}), ErrUnauthenticated)
	assert.ErrorIs(t, g.Dispatch(phone, types.Event{Type: types.EventClick}), ErrUnauthenticated)

	assert.Empty(t, inj.moves)
	assert.Empty(t, inj.clicks)
	assert.Empty(t, inj.scrolls)
}

func TestGateway_ConnectAuthorizesRepeatedly(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)

	first := g.Connect(phone)
	second := g.Connect(phone)
	assert.Equal(t, first.SessionID, second.SessionID)

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Click(phone, types.ClickCommand{}))
		require.NoError(t, g.Move(phone, types.MoveCommand{DX: 1, DY: 1}))
	}
	assert.Equal(t, 10, inj.clickCount())

	// authorization is per address
	assert.ErrorIs(t, g.RequireAuthorized("192.168.1.43"), ErrUnauthenticated)
}

func TestGateway_MoveIsRelativeToCurrentPosition(t *testing.T) {
	inj := &mockInjector{x: 100, y: 100}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Move(phone, types.MoveCommand{DX: -5, DY: 3}))
	require.Len(t, inj.moves, 1)
	assert.Equal(t, [2]int{95, 103}, inj.moves[0])
}

func TestGateway_MoveDoesNotClamp(t *testing.T) {
	inj := &mockInjector{x: 2, y: 2}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Move(phone, types.MoveCommand{DX: -50, DY: -50}))
	assert.Equal(t, [2]int{-48, -48}, inj.moves[0])
}

func TestGateway_ClickButtons(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Click(phone, types.ClickCommand{}))
	require.NoError(t, g.Click(phone, types.ClickCommand{Button: types.ButtonRight}))
	require.NoError(t, g.Click(phone, types.ClickCommand{Button: "side"}))

	assert.Equal(t, []string{"left", "right", "side"}, inj.clicks)
}

func TestGateway_ScrollNormalization(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Scroll(phone, types.ScrollCommand{DX: 10, DY: 20}))
	assert.Equal(t, []scrollCall{{"v", -10}, {"h", 5}}, inj.scrolls)
}

func TestScrollAmounts(t *testing.T) {
	tests := []struct {
		dx, dy int
		wantV  int
		wantH  int
	}{
		{10, 20, -10, 5},
		{0, 0, 0, 0},
		{3, 3, -1, 1},
		{-3, -3, 1, -1},
		{1, -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d,%d", tt.dx, tt.dy), func(t *testing.T) {
			v, h := ScrollAmounts(types.ScrollCommand{DX: tt.dx, DY: tt.dy}, DefaultScrollFactor)
			assert.Equal(t, tt.wantV, v)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestGateway_InjectorFailureIsIsolated(t *testing.T) {
	inj := &mockInjector{clickErr: errors.New("accessibility permission denied")}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	err := g.Click(phone, types.ClickCommand{})
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "click", actionErr.Action)
	assert.Equal(t, "accessibility permission denied", err.Error())

	// still authorized, other commands unaffected
	require.NoError(t, g.RequireAuthorized(phone))
	require.NoError(t, g.Move(phone, types.MoveCommand{DX: 1}))
}

func TestGateway_InjectorPanicIsRecovered(t *testing.T) {
	inj := &mockInjector{scrollPanic: true}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	var err error
	require.NotPanics(t, func() {
		err = g.Scroll(phone, types.ScrollCommand{DY: 2})
	})
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "scroll -1", err.Error())
}

func TestGateway_PositionFailure(t *testing.T) {
	inj := &mockInjector{positionErr: errors.New("no display")}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	err := g.Move(phone, types.MoveCommand{DX: 1})
	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Empty(t, inj.moves)
}

func TestGateway_PingNeedsNoConnect(t *testing.T) {
	g := newTestGateway(t, &mockInjector{})
	assert.Equal(t, types.StatusActive, g.Ping().Status)
}

func TestGateway_Dispatch(t *testing.T) {
	inj := &mockInjector{x: 10, y: 10}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Dispatch(phone, types.Event{Type: types.EventMove, DX: 2.9, DY: -2.9}))
	require.NoError(t, g.Dispatch(phone, types.Event{Type: types.EventClick, Button: "middle"}))
	require.NoError(t, g.Dispatch(phone, types.Event{Type: types.EventScroll, DX: 4, DY: 4}))
	require.NoError(t, g.Dispatch(phone, types.Event{Type: "keydown"}))

	assert.Equal(t, [][2]int{{12, 8}}, inj.moves)
	assert.Equal(t, []string{"middle"}, inj.clicks)
	assert.Equal(t, []scrollCall{{"v", -2}, {"h", 2}}, inj.scrolls)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, 3, Truncate(3.99))
	assert.Equal(t, -3, Truncate(-3.99))
	assert.Equal(t, 0, Truncate(math.NaN()))
	assert.Equal(t, 0, Truncate(math.Inf(1)))
	assert.Equal(t, math.MaxInt32, Truncate(1e300))
	assert.Equal(t, math.MinInt32, Truncate(-1e300))
	assert.Equal(t, math.MaxInt32, Truncate(float64(math.MaxInt32)+0.5))
}

func TestGateway_DispatchHugeDelta(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)
	g.Connect(phone)

	require.NoError(t, g.Dispatch(phone, types.Event{Type: types.EventMove, DX: 1e300, DY: -1e300}))
	assert.Equal(t, [][2]int{{math.MaxInt32, math.MinInt32}}, inj.moves)
}

func TestGateway_ConcurrentClients(t *testing.T) {
	inj := &mockInjector{}
	g := newTestGateway(t, inj)
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
			if i%2 == 0 {
				// never connects
				if err := g.Click(addr, types.ClickCommand{}); !errors.Is(err, ErrUnauthenticated) {
					errs <- fmt.Errorf("%s: want unauthenticated, got %v", addr, err)
				}
				return
			}
			g.Connect(addr)
			if err := g.Click(addr, types.ClickCommand{}); err != nil {
				errs <- fmt.Errorf("%s: %w", addr, err)
			}
			if err := g.Scroll(addr, types.ScrollCommand{DY: 2}); err != nil {
				errs <- fmt.Errorf("%s: %w", addr, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, n/2, g.Sessions().Len())
	assert.Equal(t, n/2, inj.clickCount())
}
