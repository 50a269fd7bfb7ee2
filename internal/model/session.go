package model

import (
	"time"

	"github.com/deppfellow/qrtrack/internal/validation"
)

// Session is a tracked journey between a start point and an end point.
// Sessions are immutable once created.
type Session struct {
	ID         int64     `json:"id"`
	StartPoint string    `json:"startPoint"`
	EndPoint   string    `json:"endPoint"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StartSessionPayload is the body of POST /start-session.
type StartSessionPayload struct {
	StartPoint string `json:"startPoint" validate:"required"`
	EndPoint   string `json:"endPoint" validate:"required"`
}

func (p *StartSessionPayload) Validate() error {
	return validation.Struct(p)
}

// ValidationMessage is the client message for a rejected payload.
func (p *StartSessionPayload) ValidationMessage() string {
	return "Start & End required"
}

// StartSessionResponse carries the id assigned to the new session.
type StartSessionResponse struct {
	SessionID int64 `json:"sessionId"`
}

// GetSessionRequest addresses a session by its path id.
type GetSessionRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *GetSessionRequest) Validate() error {
	return validation.Struct(r)
}

// SessionDetailResponse is a session together with its recorded nodes.
type SessionDetailResponse struct {
	Session *Session `json:"session"`
	Nodes   []Node   `json:"nodes"`
}
