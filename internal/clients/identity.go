package clients

import (
	"errors"
	"net"
	"net/http"
)

var ErrNoIdentity = errors.New("no client identity")

// IdentityExtractor derives the key a request is authorized under.
type IdentityExtractor interface {
	Extract(r *http.Request) (string, error)
}

// RemoteAddr identifies clients by their source host, port stripped.
type RemoteAddr struct{}

func (RemoteAddr) Extract(r *http.Request) (string, error) {
	if r.RemoteAddr == "" {
		return "", ErrNoIdentity
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// no port, use it as is
		return r.RemoteAddr, nil
	}
	return host, nil
}
