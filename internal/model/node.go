package model

import (
	"time"

	"github.com/deppfellow/qrtrack/internal/validation"
)

// Node is one QR-code scan recorded against a session.
//
// SessionID is not checked against existing sessions; a node pointing at
// an unknown session is stored as-is.
type Node struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"sessionId"`
	QRCode    string    `json:"qrCode"`
	Timestamp time.Time `json:"timestamp"`
}

// AddNodePayload is the body of POST /add-node.
type AddNodePayload struct {
	SessionID IntegerLike `json:"sessionId" validate:"required"`
	QRCode    string      `json:"qrCode" validate:"required"`
}

func (p *AddNodePayload) Validate() error {
	return validation.Struct(p)
}

// ValidationMessage is the client message for a rejected payload.
func (p *AddNodePayload) ValidationMessage() string {
	return "Session & QR required"
}

// AddNodeResponse acknowledges a stored node.
type AddNodeResponse struct {
	Success bool `json:"success"`
}

// ListNodesRequest addresses the nodes of a session by path id.
type ListNodesRequest struct {
	SessionID int64 `param:"id" validate:"required,min=1"`
}

func (r *ListNodesRequest) Validate() error {
	return validation.Struct(r)
}

// ListNodesResponse is the ordered list of nodes for a session.
type ListNodesResponse struct {
	Nodes []Node `json:"nodes"`
}
