// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives
// validated payloads from handlers, applies the tracking rules and calls
// repositories to persist or read data.
package service

import (
	"context"

	"github.com/deppfellow/qrtrack/internal/repository"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/rs/zerolog"
)

type Services struct {
	Sessions *SessionService
	Nodes    *NodeService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Sessions: NewSessionService(s, repos.Sessions, repos.Nodes),
		Nodes:    NewNodeService(s, repos.Nodes),
	}, nil
}

// loggerFor returns the request-scoped logger carried by ctx, falling back
// to the server logger outside of a request.
func loggerFor(ctx context.Context, s *server.Server) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.Logger
}
