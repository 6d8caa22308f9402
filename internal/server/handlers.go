package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"mousebridge/internal/capture"
	"mousebridge/internal/discovery"
	"mousebridge/internal/gateway"
	"mousebridge/internal/types"

	"go.uber.org/zap"
)

// ErrMalformedPayload is returned when a command body is not a JSON object
// of the expected shape. It is reported like any other failed command: 500
// with the decode message.
var ErrMalformedPayload = errors.New("malformed payload")

const maxBodyBytes = 64 << 10

// deltaPayload accepts fractional deltas; they are truncated toward zero.
type deltaPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	info, err := s.pairing.Discover()
	if err != nil {
		msg := "Error: " + err.Error()
		if errors.Is(err, discovery.ErrNoAddressResolved) {
			msg = "Error: Could not determine server IP"
		}
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := renderPairingPage(&buf, info); err != nil {
		s.log.Error("render pairing page", zap.Error(err))
		http.Error(w, "Error: could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.clientAddr(w, r)
	if !ok {
		return
	}
	id := s.gw.Connect(addr)
	writeJSON(w, http.StatusOK, types.Status{
		Status:    types.StatusConnected,
		Message:   "Successfully connected to server",
		SessionID: id.SessionID,
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gw.Ping())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.authorized(w, r)
	if !ok {
		return
	}
	var p deltaPayload
	if err := decodeLenient(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	cmd := types.MoveCommand{DX: gateway.Truncate(p.DX), DY: gateway.Truncate(p.DY)}
	s.respond(w, s.gw.Move(addr, cmd))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.authorized(w, r)
	if !ok {
		return
	}
	var cmd types.ClickCommand
	if err := decodeLenient(r, &cmd); err != nil {
		s.writeError(w, err)
		return
	}
	s.respond(w, s.gw.Click(addr, cmd))
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.authorized(w, r)
	if !ok {
		return
	}
	var p deltaPayload
	if err := decodeLenient(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	cmd := types.ScrollCommand{DX: gateway.Truncate(p.DX), DY: gateway.Truncate(p.DY)}
	s.respond(w, s.gw.Scroll(addr, cmd))
}

func (s *Server) handleDisplays(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorized(w, r); !ok {
		return
	}
	displays, err := s.screen.Displays()
	if err != nil {
		s.log.Error("list displays", zap.Error(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.DisplayList{Displays: displays})
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorized(w, r); !ok {
		return
	}
	display := 0
	if v := r.URL.Query().Get("display"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, types.Status{Status: types.StatusError, Message: "display must be an integer"})
			return
		}
		display = n
	}
	frame, err := s.screen.Frame(capture.Options{Display: display, Quality: s.screenQuality})
	if err != nil {
		s.log.Error("capture frame", zap.Error(err))
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// clientAddr extracts the caller's identity or writes a 400.
func (s *Server) clientAddr(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr, err := s.identity.Extract(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.Status{Status: types.StatusError, Message: err.Error()})
		return "", false
	}
	return addr, true
}

// authorized runs the connect check before anything reads the body.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr, ok := s.clientAddr(w, r)
	if !ok {
		return "", false
	}
	if err := s.gw.RequireAuthorized(addr); err != nil {
		s.writeError(w, err)
		return "", false
	}
	return addr, true
}

func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.Status{Status: types.StatusSuccess})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeJSON(w, status, types.Status{Status: types.StatusError, Message: msg})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		return http.StatusUnauthorized, "Not connected"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// decodeLenient fills dst from a JSON body. An empty body leaves dst at its
// zero value.
func decodeLenient(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
