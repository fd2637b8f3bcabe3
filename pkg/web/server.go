// Package web serves the focusbuddy API and the live websocket feeds.
// The server is the presentation sink: engine output is broadcast to
// the focus feed, annotated camera frames to the camera feed.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/lukereid/focusbuddy/pkg/auth"
	"github.com/lukereid/focusbuddy/pkg/focus"
	"github.com/lukereid/focusbuddy/pkg/hub"
	"github.com/lukereid/focusbuddy/pkg/quotes"
	"github.com/lukereid/focusbuddy/pkg/session"
	"github.com/lukereid/focusbuddy/pkg/store"
)

// Server is the focusbuddy HTTP/websocket server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	auth       *auth.Service
	sessions   *store.SessionStore
	controller *session.Controller
	rotator    *quotes.Rotator

	focusHub  *hub.Hub
	cameraHub *hub.Hub
}

// NewServer wires the API routes and websocket feeds.
func NewServer(port string, authSvc *auth.Service, sessions *store.SessionStore, rotator *quotes.Rotator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:      port,
		logger:    logger,
		auth:      authSvc,
		sessions:  sessions,
		rotator:   rotator,
		focusHub:  hub.New("focus", logger),
		cameraHub: hub.New("camera", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "focusbuddy",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	api := app.Group("/api")
	api.Post("/register", s.handleRegister)
	api.Post("/login", s.handleLogin)
	api.Get("/dashboard/:email", s.handleDashboard)
	api.Get("/sessions/:email", s.handleSessions)
	api.Get("/quote", s.handleQuote)
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/end", s.handleSessionEnd)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/focus", websocket.New(func(c *websocket.Conn) {
		hub.NewClient(s.focusHub, c).Run()
	}))
	app.Get("/ws/camera", websocket.New(func(c *websocket.Conn) {
		hub.NewClient(s.cameraHub, c).Run()
	}))

	s.app = app
	return s
}

// SetController attaches the session controller. Separated from the
// constructor because the controller's sink is the server itself.
func (s *Server) SetController(c *session.Controller) {
	s.controller = c
}

// Start runs the hubs and listens. Blocks until shutdown.
func (s *Server) Start() error {
	go s.focusHub.Run()
	go s.cameraHub.Run()

	if s.rotator != nil {
		s.rotator.OnRotate = func(q quotes.Quote) {
			s.focusHub.BroadcastJSON(feedMessage{Type: "quote", Quote: &q})
		}
	}

	s.logger.Info("web server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the web server and hubs.
func (s *Server) Shutdown() error {
	s.focusHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}

// feedMessage is the envelope for the /ws/focus feed.
type feedMessage struct {
	Type           string               `json:"type"` // tick, elapsed, session_end, quote
	Tick           *focus.Update        `json:"tick,omitempty"`
	ElapsedSeconds *int                 `json:"elapsed_seconds,omitempty"`
	Record         *store.SessionRecord `json:"record,omitempty"`
	Quote          *quotes.Quote        `json:"quote,omitempty"`
}

// ScoreUpdate implements session.Sink.
func (s *Server) ScoreUpdate(u focus.Update) {
	s.focusHub.BroadcastJSON(feedMessage{Type: "tick", Tick: &u})
}

// Elapsed implements session.Sink.
func (s *Server) Elapsed(seconds int) {
	s.focusHub.BroadcastJSON(feedMessage{Type: "elapsed", ElapsedSeconds: &seconds})
}

// SessionEnded implements session.Sink.
func (s *Server) SessionEnded(rec store.SessionRecord) {
	s.focusHub.BroadcastJSON(feedMessage{Type: "session_end", Record: &rec})
}

// SendCameraFrame broadcasts an annotated frame to camera feed clients.
func (s *Server) SendCameraFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

var _ session.Sink = (*Server)(nil)
