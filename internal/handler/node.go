package handler

import (
	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/service"
	"github.com/labstack/echo/v4"
)

type NodeHandler struct {
	Handler
	nodes *service.NodeService
}

func NewNodeHandler(s *server.Server, nodes *service.NodeService) *NodeHandler {
	return &NodeHandler{
		Handler: NewHandler(s),
		nodes:   nodes,
	}
}

// AddNode handles POST /add-node.
func (h *NodeHandler) AddNode(c echo.Context, req *model.AddNodePayload) (*model.AddNodeResponse, error) {
	return h.nodes.AddNode(c.Request().Context(), req)
}

// ListNodes handles GET /sessions/:id/nodes.
func (h *NodeHandler) ListNodes(c echo.Context, req *model.ListNodesRequest) (*model.ListNodesResponse, error) {
	return h.nodes.ListNodes(c.Request().Context(), req.SessionID)
}
