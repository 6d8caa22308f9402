//go:build !windows

package input

import "github.com/go-vgo/robotgo"

// scrollXY is robotgo.Scroll; tests replace it.
var scrollXY = robotgo.Scroll

// robotgo treats a positive x as a scroll to the left.
func hscroll(amount int) {
	scrollXY(-amount, 0)
}
