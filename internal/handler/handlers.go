// Package handler is the HTTP layer: it binds and validates requests,
// calls the service layer and writes JSON responses.
package handler

import (
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Session *SessionHandler
	Node    *NodeHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Session: NewSessionHandler(s, services.Sessions),
		Node:    NewNodeHandler(s, services.Nodes),
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
