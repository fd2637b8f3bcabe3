package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lukereid/focusbuddy/pkg/auth"
	"github.com/lukereid/focusbuddy/pkg/capture"
	"github.com/lukereid/focusbuddy/pkg/session"
	"github.com/lukereid/focusbuddy/pkg/store"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionRequest identifies the user starting or ending a session.
type SessionRequest struct {
	Email string `json:"email"`
}

// userResponse strips the password from API responses.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	u, err := s.auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": verr.Fields,
			})
		}
		if errors.Is(err, store.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered.",
			})
		}
		s.logger.Error("register failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "registration failed",
		})
	}

	return c.JSON(toUserResponse(u))
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	u, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	return c.JSON(toUserResponse(u))
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	email := c.Params("email")
	return c.JSON(s.sessions.StatsFor(email, time.Now()))
}

func (s *Server) handleSessions(c *fiber.Ctx) error {
	email := c.Params("email")
	recs := s.sessions.ForUser(email)
	if recs == nil {
		recs = []*store.SessionRecord{}
	}
	return c.JSON(recs)
}

func (s *Server) handleQuote(c *fiber.Ctx) error {
	if s.rotator == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no quotes configured"})
	}
	return c.JSON(s.rotator.Current())
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	state, score, elapsed := s.controller.Snapshot()
	return c.JSON(fiber.Map{
		"state":           state,
		"score":           score,
		"elapsed_seconds": elapsed,
	})
}

func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	// A start request while a session is active is not a defined
	// transition; reject it here before touching the controller.
	if s.controller.State() != session.StateIdle {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a session is already active",
		})
	}

	if err := s.controller.Start(req.Email); err != nil {
		return s.startFailure(c, err)
	}

	return c.JSON(fiber.Map{"state": s.controller.State()})
}

// startFailure maps acquisition errors to categorized, actionable
// responses. No session record exists for a failed start.
func (s *Server) startFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionActive):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a session is already active",
		})
	case errors.Is(err, capture.ErrPermissionDenied):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"category": "permission_denied",
			"error":    "⚠️ Camera/Mic permission denied. Please allow access to both devices and try again.",
		})
	case errors.Is(err, capture.ErrDeviceNotFound):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"category": "device_not_found",
			"error":    "⚠️ No camera or microphone detected. Please connect one and try again.",
		})
	default:
		s.logger.Error("session start failed", "err", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"category": "capture_error",
			"error":    "⚠️ Could not access camera/microphone: " + err.Error(),
		})
	}
}

func (s *Server) handleSessionEnd(c *fiber.Ctx) error {
	rec, err := s.controller.End()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "no active session",
			})
		}
		s.logger.Error("session end failed", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to end session",
		})
	}
	return c.JSON(rec)
}
