package handler

import (
	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/service"
	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	Handler
	sessions *service.SessionService
}

func NewSessionHandler(s *server.Server, sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{
		Handler:  NewHandler(s),
		sessions: sessions,
	}
}

// StartSession handles POST /start-session.
func (h *SessionHandler) StartSession(c echo.Context, req *model.StartSessionPayload) (*model.StartSessionResponse, error) {
	return h.sessions.StartSession(c.Request().Context(), req)
}

// GetSession handles GET /sessions/:id.
func (h *SessionHandler) GetSession(c echo.Context, req *model.GetSessionRequest) (*model.SessionDetailResponse, error) {
	return h.sessions.GetSession(c.Request().Context(), req.ID)
}
