package gateway

import "errors"

// ErrUnauthenticated is returned for commands from clients that never connected.
var ErrUnauthenticated = errors.New("not connected")

// ActionError is an injector failure during a pointer command. The client
// stays authorized.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string { return e.Err.Error() }

func (e *ActionError) Unwrap() error { return e.Err }
