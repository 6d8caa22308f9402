package input

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Injector performs pointer actions on the host.
type Injector interface {
	Position() (x, y int, err error)
	MoveTo(x, y int) error
	Click(button string) error
	// Scroll scrolls vertically; positive is up.
	Scroll(amount int) error
	// HScroll scrolls horizontally; positive is right.
	HScroll(amount int) error
}

// Robot drives the local pointer through robotgo.
type Robot struct{}

func NewRobot() *Robot { return &Robot{} }

func (Robot) Position() (x, y int, err error) {
	err = protect("position", func() { x, y = robotgo.GetMousePos() })
	return x, y, err
}

// MoveTo moves the cursor to absolute screen coordinates (x,y).
func (Robot) MoveTo(x, y int) error {
	return protect("move", func() { robotgo.Move(x, y) })
}

func (Robot) Click(button string) error {
	return protect("click", func() { robotgo.Click(robotButton(button), false) })
}

func (Robot) Scroll(amount int) error {
	if amount == 0 {
		return nil
	}
	return protect("scroll", func() { robotgo.Scroll(0, amount) })
}

func (Robot) HScroll(amount int) error {
	if amount == 0 {
		return nil
	}
	return protect("hscroll", func() { hscroll(amount) })
}

// robotButton translates client button names to robotgo's. Anything else is
// handed to robotgo untouched.
func robotButton(b string) string {
	switch strings.ToLower(b) {
	case "middle", "m":
		return "center"
	case "l":
		return "left"
	case "r":
		return "right"
	default:
		return b
	}
}

// protect turns a panic inside the platform layer into an error.
func protect(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", op, r)
		}
	}()
	fn()
	return nil
}
