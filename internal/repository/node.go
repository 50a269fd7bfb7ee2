package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
)

const nodesTable = "nodes"

type NodeRepository struct {
	server *server.Server
}

func NewNodeRepository(s *server.Server) *NodeRepository {
	return &NodeRepository{server: s}
}

// Create appends a node to a session. The session id is stored as given;
// nothing checks that the session exists.
func (r *NodeRepository) Create(ctx context.Context, sessionID int64, qrCode string) (*model.Node, error) {
	const stmt = `
		INSERT INTO nodes (session_id, qr_code)
		VALUES ($1, $2)
		RETURNING id, session_id, qr_code, "timestamp"`

	start := time.Now()

	var n model.Node
	err := r.server.DB.DB.QueryRowContext(ctx, stmt, sessionID, qrCode).
		Scan(&n.ID, &n.SessionID, &n.QRCode, &n.Timestamp)
	r.server.DB.Observe("insert", nodesTable, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert node: %w", err)
	}

	return &n, nil
}

// ListBySession returns the nodes recorded for a session in insertion
// order. An unknown session yields an empty, non-nil slice.
func (r *NodeRepository) ListBySession(ctx context.Context, sessionID int64) ([]model.Node, error) {
	const stmt = `
		SELECT id, session_id, qr_code, "timestamp"
		FROM nodes
		WHERE session_id = $1
		ORDER BY id`

	start := time.Now()
	nodes, err := r.list(ctx, stmt, sessionID)
	r.server.DB.Observe("select", nodesTable, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes for session %d: %w", sessionID, err)
	}

	return nodes, nil
}

func (r *NodeRepository) list(ctx context.Context, stmt string, args ...any) ([]model.Node, error) {
	rows, err := r.server.DB.DB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]model.Node, 0)
	for rows.Next() {
		var n model.Node
		if err := rows.Scan(&n.ID, &n.SessionID, &n.QRCode, &n.Timestamp); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}
