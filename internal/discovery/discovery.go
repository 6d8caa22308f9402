// Package discovery builds the pairing URL and its QR code from the host's
// LAN address.
package discovery

import (
	"fmt"
	"net"
	"strconv"

	"mousebridge/internal/types"

	"go.uber.org/zap"
)

type Service struct {
	resolver AddressResolver
	codes    CodeGenerator
	port     int
	log      *zap.Logger
}

func NewService(resolver AddressResolver, codes CodeGenerator, port int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{resolver: resolver, codes: codes, port: port, log: log}
}

// URL resolves the host address and returns the URL phones should open.
func (s *Service) URL() (string, error) {
	ip, err := s.resolver.Resolve()
	if err != nil {
		return "", err
	}
	if ip == "" {
		return "", ErrNoAddressResolved
	}
	return "http://" + net.JoinHostPort(ip, strconv.Itoa(s.port)), nil
}

// Discover returns the pairing URL and a scannable image of it. Nothing is
// cached; every call resolves again.
func (s *Service) Discover() (types.PairingInfo, error) {
	url, err := s.URL()
	if err != nil {
		s.log.Error("error getting IP", zap.Error(err))
		return types.PairingInfo{}, err
	}
	s.log.Info("generated server URL", zap.String("url", url))

	img, err := s.codes.Encode(url)
	if err != nil {
		return types.PairingInfo{}, fmt.Errorf("pairing image: %w", err)
	}
	return types.PairingInfo{URL: url, Image: img}, nil
}

// Announce logs the pairing instructions once. Failures are logged only.
func (s *Service) Announce() {
	url, err := s.URL()
	if err != nil {
		s.log.Error("could not determine local IP address", zap.Error(err))
		return
	}
	s.log.Info("mouse controller server is running", zap.String("url", url))
	s.log.Sugar().Infof(`
=====================================
Mouse Controller Server is running!
=====================================

Server URL: %s

To connect your mobile device:
1. Make sure your phone is connected to the same WiFi network as this computer
2. Open a browser on your phone and visit: %s
3. Or scan the QR code shown in your computer's browser

Press Ctrl+C to stop the server
=====================================`, url, url)
}
