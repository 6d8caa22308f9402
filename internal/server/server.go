package server

import (
	"net/http"
	"time"

	"mousebridge/internal/capture"
	"mousebridge/internal/clients"
	"mousebridge/internal/gateway"
	"mousebridge/internal/types"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Pairing produces the data shown on the landing page.
type Pairing interface {
	Discover() (types.PairingInfo, error)
}

// ScreenSource reports display geometry and captures frames.
type ScreenSource interface {
	Displays() ([]types.Display, error)
	Frame(opts capture.Options) (types.ScreenUpdate, error)
}

type Config struct {
	Gateway   *gateway.Gateway
	Discovery Pairing
	Screen    ScreenSource
	Identity  clients.IdentityExtractor
	Logger    *zap.Logger

	EventsPerSecond float64
	Burst           int
	ScreenQuality   int
}

type Server struct {
	gw       *gateway.Gateway
	pairing  Pairing
	screen   ScreenSource
	identity clients.IdentityExtractor
	log      *zap.Logger
	upgrader websocket.Upgrader

	eventsPerSecond float64
	burst           int
	screenQuality   int
	pingInterval    time.Duration
}

func New(cfg Config) *Server {
	s := &Server{
		gw:              cfg.Gateway,
		pairing:         cfg.Discovery,
		screen:          cfg.Screen,
		identity:        cfg.Identity,
		log:             cfg.Logger,
		upgrader:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		eventsPerSecond: cfg.EventsPerSecond,
		burst:           cfg.Burst,
		screenQuality:   cfg.ScreenQuality,
		pingInterval:    30 * time.Second,
	}
	if s.identity == nil {
		s.identity = clients.RemoteAddr{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.eventsPerSecond <= 0 {
		s.eventsPerSecond = 120
	}
	if s.burst <= 0 {
		s.burst = 30
	}
	return s
}

// Handler returns the full HTTP handler: routes wrapped in request logging,
// panic recovery and a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = s.logRequests(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.log)),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With", "X-Request-ID"}),
	)(h)
	return h
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/connect", s.handleConnect).Methods(http.MethodPost)
	r.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	m := r.PathPrefix("/mouse").Subrouter()
	m.HandleFunc("/move", s.handleMove).Methods(http.MethodPost)
	m.HandleFunc("/click", s.handleClick).Methods(http.MethodPost)
	m.HandleFunc("/scroll", s.handleScroll).Methods(http.MethodPost)

	r.HandleFunc("/display", s.handleDisplays).Methods(http.MethodGet)
	r.HandleFunc("/screen", s.handleScreen).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	return r
}

// CloseControls closes every open websocket control channel.
func (s *Server) CloseControls() {
	deadline := time.Now().Add(time.Second)
	for _, conn := range s.gw.Sessions().Controls() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		conn.Close()
	}
}
