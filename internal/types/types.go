package types

// MoveCommand is a relative pointer displacement in pixels.
type MoveCommand struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// ClickCommand names the button to click. An empty Button means left.
type ClickCommand struct {
	Button string `json:"button"`
}

// ScrollCommand is a relative wheel displacement in ticks.
type ScrollCommand struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Event is a control frame received over the websocket channel.
type Event struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Button string  `json:"button"`
}

const (
	EventMove   = "move"
	EventClick  = "click"
	EventScroll = "scroll"
)

// PairingInfo is what a phone needs to find the host.
type PairingInfo struct {
	URL   string
	Image []byte // PNG
}

// Status is the common JSON response envelope.
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

const (
	StatusConnected = "connected"
	StatusActive    = "active"
	StatusSuccess   = "success"
	StatusError     = "error"
)

// Display describes the bounds of one active display.
type Display struct {
	Index  int `json:"index"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DisplayList is the /display response body.
type DisplayList struct {
	Displays []Display `json:"displays"`
}

// ScreenUpdate is a captured frame plus the cursor position.
type ScreenUpdate struct {
	Image  string `json:"image"`
	MouseX int    `json:"mouseX"`
	MouseY int    `json:"mouseY"`
}
