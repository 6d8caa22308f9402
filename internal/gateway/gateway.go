// Package gateway validates pointer commands against the set of paired
// clients and forwards them to the input injector.
package gateway

import (
	"fmt"
	"math"

	"mousebridge/internal/clients"
	"mousebridge/internal/input"
	"mousebridge/internal/types"

	"go.uber.org/zap"
)

const DefaultScrollFactor = 0.5

type Config struct {
	Sessions     *clients.Manager
	Injector     input.Injector
	Logger       *zap.Logger
	ScrollFactor float64
}

type Gateway struct {
	sessions     *clients.Manager
	injector     input.Injector
	log          *zap.Logger
	scrollFactor float64
}

func New(cfg Config) *Gateway {
	g := &Gateway{
		sessions:     cfg.Sessions,
		injector:     cfg.Injector,
		log:          cfg.Logger,
		scrollFactor: cfg.ScrollFactor,
	}
	if g.sessions == nil {
		g.sessions = clients.NewManager()
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	if g.scrollFactor <= 0 {
		g.scrollFactor = DefaultScrollFactor
	}
	return g
}

// Sessions returns the authorized client set.
func (g *Gateway) Sessions() *clients.Manager { return g.sessions }

// Connect authorizes addr. It always succeeds.
func (g *Gateway) Connect(addr string) clients.Identity {
	id, isNew := g.sessions.Connect(addr)
	if isNew {
		g.log.Info("new client connected", zap.String("client", addr), zap.String("session", id.SessionID))
	} else {
		g.log.Debug("client reconnected", zap.String("client", addr))
	}
	return id
}

// RequireAuthorized fails with ErrUnauthenticated unless addr has connected.
func (g *Gateway) RequireAuthorized(addr string) error {
	if _, ok := g.sessions.Lookup(addr); !ok {
		g.log.Warn("unauthorized client attempt", zap.String("client", addr))
		return ErrUnauthenticated
	}
	return nil
}

// Ping needs no authorization.
func (g *Gateway) Ping() types.Status {
	return types.Status{Status: types.StatusActive}
}

// Move shifts the pointer by the command's delta from where it is now.
func (g *Gateway) Move(addr string, cmd types.MoveCommand) error {
	if err := g.RequireAuthorized(addr); err != nil {
		return err
	}
	return g.run("move", addr, func() error {
		x, y, err := g.injector.Position()
		if err != nil {
			return err
		}
		return g.injector.MoveTo(x+cmd.DX, y+cmd.DY)
	})
}

// Click clicks the named button, left when empty. The name is not validated.
func (g *Gateway) Click(addr string, cmd types.ClickCommand) error {
	if err := g.RequireAuthorized(addr); err != nil {
		return err
	}
	button := cmd.Button
	if button == "" {
		button = types.ButtonLeft
	}
	return g.run("click", addr, func() error {
		return g.injector.Click(button)
	})
}

// Scroll scales both axes and inverts the vertical one, then scrolls
// vertically and horizontally as two separate injector calls.
func (g *Gateway) Scroll(addr string, cmd types.ScrollCommand) error {
	if err := g.RequireAuthorized(addr); err != nil {
		return err
	}
	vertical, horizontal := ScrollAmounts(cmd, g.scrollFactor)
	return g.run("scroll", addr, func() error {
		if err := g.injector.Scroll(vertical); err != nil {
			return err
		}
		return g.injector.HScroll(horizontal)
	})
}

// ScrollAmounts returns the vertical and horizontal injector arguments for
// cmd, truncated toward zero.
func ScrollAmounts(cmd types.ScrollCommand, factor float64) (vertical, horizontal int) {
	vertical = int(-float64(cmd.DY) * factor)
	horizontal = int(float64(cmd.DX) * factor)
	return vertical, horizontal
}

// Dispatch runs a websocket control event through the matching command.
// Unknown event types are ignored.
func (g *Gateway) Dispatch(addr string, ev types.Event) error {
	switch ev.Type {
	case types.EventMove:
		return g.Move(addr, types.MoveCommand{DX: Truncate(ev.DX), DY: Truncate(ev.DY)})
	case types.EventClick:
		return g.Click(addr, types.ClickCommand{Button: ev.Button})
	case types.EventScroll:
		return g.Scroll(addr, types.ScrollCommand{DX: Truncate(ev.DX), DY: Truncate(ev.DY)})
	default:
		g.log.Debug("ignoring control event", zap.String("type", ev.Type), zap.String("client", addr))
		return nil
	}
}

// Truncate converts a JSON number to an int, rounding toward zero. NaN and
// infinities become 0; other values are clamped to the int32 range so that
// cursor arithmetic cannot overflow.
func Truncate(f float64) int {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

// run isolates one injector action: errors and panics come back as
// *ActionError.
func (g *Gateway) run(action, addr string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
		if err != nil {
			g.log.Error("pointer action failed", zap.String("action", action), zap.String("client", addr), zap.Error(err))
			err = &ActionError{Action: action, Err: err}
		}
	}()
	return fn()
}
