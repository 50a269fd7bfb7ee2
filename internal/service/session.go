package service

import (
	"context"

	"github.com/deppfellow/qrtrack/internal/metrics"
	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
)

// SessionStore persists sessions.
type SessionStore interface {
	Create(ctx context.Context, payload *model.StartSessionPayload) (*model.Session, error)
	GetByID(ctx context.Context, id int64) (*model.Session, error)
}

// NodeLister reads the nodes of a session.
type NodeLister interface {
	ListBySession(ctx context.Context, sessionID int64) ([]model.Node, error)
}

type SessionService struct {
	server   *server.Server
	sessions SessionStore
	nodes    NodeLister
}

func NewSessionService(s *server.Server, sessions SessionStore, nodes NodeLister) *SessionService {
	return &SessionService{
		server:   s,
		sessions: sessions,
		nodes:    nodes,
	}
}

// StartSession creates a session and returns its id.
func (s *SessionService) StartSession(ctx context.Context, payload *model.StartSessionPayload) (*model.StartSessionResponse, error) {
	session, err := s.sessions.Create(ctx, payload)
	if err != nil {
		return nil, err
	}

	metrics.SessionsCreated.Inc()
	loggerFor(ctx, s.server).Debug().Int64("session_id", session.ID).Msg("session started")

	return &model.StartSessionResponse{SessionID: session.ID}, nil
}

// GetSession returns a session with every node recorded against it.
func (s *SessionService) GetSession(ctx context.Context, id int64) (*model.SessionDetailResponse, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nodes, err := s.nodes.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.SessionDetailResponse{Session: session, Nodes: nodes}, nil
}
