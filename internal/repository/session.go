package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/sqlerr"
)

const sessionsTable = "sessions"

type SessionRepository struct {
	server *server.Server
}

func NewSessionRepository(s *server.Server) *SessionRepository {
	return &SessionRepository{server: s}
}

// Create inserts a session and returns it with its assigned id and
// creation time.
func (r *SessionRepository) Create(ctx context.Context, payload *model.StartSessionPayload) (*model.Session, error) {
	const stmt = `
		INSERT INTO sessions (start_point, end_point)
		VALUES ($1, $2)
		RETURNING id, start_point, end_point, created_at`

	start := time.Now()

	var s model.Session
	err := r.server.DB.DB.QueryRowContext(ctx, stmt, payload.StartPoint, payload.EndPoint).
		Scan(&s.ID, &s.StartPoint, &s.EndPoint, &s.CreatedAt)
	r.server.DB.Observe("insert", sessionsTable, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return &s, nil
}

// GetByID returns the session with the given id. A missing session yields
// a *sqlerr.NotFoundError wrapping sql.ErrNoRows.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	const stmt = `
		SELECT id, start_point, end_point, created_at
		FROM sessions
		WHERE id = $1`

	start := time.Now()

	var s model.Session
	err := r.server.DB.DB.QueryRowContext(ctx, stmt, id).
		Scan(&s.ID, &s.StartPoint, &s.EndPoint, &s.CreatedAt)
	if sqlerr.IsNoRows(err) {
		r.server.DB.Observe("select", sessionsTable, start, nil)
		return nil, sqlerr.NotFound(sessionsTable, fmt.Errorf("session %d: %w", id, err))
	}
	r.server.DB.Observe("select", sessionsTable, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %d: %w", id, err)
	}

	return &s, nil
}
