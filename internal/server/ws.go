package server

import (
	"encoding/json"
	"net/http"
	"time"

	"mousebridge/internal/types"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	wsReadLimit = 64 << 10
	wsIdle      = 60 * time.Second
	wsWriteWait = 5 * time.Second
)

// handleWS upgrades an authorized client to a control channel carrying
// move/click/scroll events.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.authorized(w, r)
	if !ok {
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade error", zap.String("client", addr), zap.Error(err))
		return
	}

	ws.SetReadLimit(wsReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(wsIdle))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsIdle))
	})

	old, _ := s.gw.Sessions().SetControl(addr, ws)
	if old != nil {
		old.Close()
	}
	s.log.Info("control channel opened", zap.String("client", addr))

	go s.handleControl(addr, ws)
}

func (s *Server) handleControl(addr string, ws *websocket.Conn) {
	stop := make(chan struct{})
	defer func() {
		close(stop)
		s.gw.Sessions().RemoveControl(addr, ws)
		ws.Close()
		s.log.Info("control channel closed", zap.String("client", addr))
	}()
	go s.keepAlive(ws, stop)

	limiter := rate.NewLimiter(rate.Limit(s.eventsPerSecond), s.burst)
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("control read error", zap.String("client", addr), zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			s.log.Debug("control event dropped", zap.String("client", addr))
			continue
		}

		var ev types.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.log.Debug("json error", zap.String("client", addr), zap.Error(err))
			continue
		}
		if err := s.gw.Dispatch(addr, ev); err != nil {
			_, text := errorStatus(err)
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if werr := ws.WriteJSON(types.Status{Status: types.StatusError, Message: text}); werr != nil {
				return
			}
		}
	}
}

func (s *Server) keepAlive(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
