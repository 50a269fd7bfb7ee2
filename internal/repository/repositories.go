// Package repository holds the SQL for sessions and nodes.
//
// Statements use $n placeholders and RETURNING, which DuckDB and
// PostgreSQL both accept, so one repository serves either engine.
// Errors are returned wrapped; mapping them to HTTP statuses is the
// global error handler's job.
package repository

import (
	"github.com/deppfellow/qrtrack/internal/server"
)

// Repositories is the container for every repository instance.
type Repositories struct {
	Sessions *SessionRepository
	Nodes    *NodeRepository
}

// NewRepositories builds every repository on top of the server's storage handle.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Sessions: NewSessionRepository(s),
		Nodes:    NewNodeRepository(s),
	}
}
