//go:build windows

package input

import "syscall"

var (
	user32         = syscall.NewLazyDLL("user32.dll")
	procMouseEvent = user32.NewProc("mouse_event")
)

const (
	MOUSEEVENTF_HWHEEL = 0x1000
	WHEEL_DELTA        = 120
)

// robotgo sends its x amount as a vertical wheel event on Windows, so the
// horizontal wheel goes straight to user32. Positive is right.
func hscroll(amount int) {
	mouseEvent(MOUSEEVENTF_HWHEEL, 0, 0, uint32(int32(amount*WHEEL_DELTA)), 0)
}

func mouseEvent(flags uint32, dx, dy int32, data uint32, extra uintptr) {
	procMouseEvent.Call(
		uintptr(flags),
		uintptr(dx),
		uintptr(dy),
		uintptr(data),
		extra,
	)
}
