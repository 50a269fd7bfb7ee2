package service

import (
	"context"

	"github.com/deppfellow/qrtrack/internal/metrics"
	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
)

// NodeStore persists and reads nodes.
type NodeStore interface {
	Create(ctx context.Context, sessionID int64, qrCode string) (*model.Node, error)
	ListBySession(ctx context.Context, sessionID int64) ([]model.Node, error)
}

type NodeService struct {
	server *server.Server
	nodes  NodeStore
}

func NewNodeService(s *server.Server, nodes NodeStore) *NodeService {
	return &NodeService{
		server: s,
		nodes:  nodes,
	}
}

// AddNode records a QR scan against a session. Unknown session ids are
// accepted as-is.
func (s *NodeService) AddNode(ctx context.Context, payload *model.AddNodePayload) (*model.AddNodeResponse, error) {
	node, err := s.nodes.Create(ctx, payload.SessionID.Int64(), payload.QRCode)
	if err != nil {
		return nil, err
	}

	metrics.NodesRecorded.Inc()
	loggerFor(ctx, s.server).Debug().
		Int64("session_id", node.SessionID).
		Int64("node_id", node.ID).
		Msg("node recorded")

	return &model.AddNodeResponse{Success: true}, nil
}

// ListNodes returns the nodes of a session in scan order.
func (s *NodeService) ListNodes(ctx context.Context, sessionID int64) (*model.ListNodesResponse, error) {
	nodes, err := s.nodes.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &model.ListNodesResponse{Nodes: nodes}, nil
}
