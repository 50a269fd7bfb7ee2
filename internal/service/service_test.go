package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/qrtrack/internal/model"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/sqlerr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	nextID  int64
	created []model.StartSessionPayload
	err     error
}

func (f *fakeSessions) Create(_ context.Context, p *model.StartSessionPayload) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	f.created = append(f.created, *p)
	return &model.Session{ID: f.nextID, StartPoint: p.StartPoint, EndPoint: p.EndPoint, CreatedAt: time.Now()}, nil
}

func (f *fakeSessions) GetByID(_ context.Context, id int64) (*model.Session, error) {
	if id < 1 || id > f.nextID {
		return nil, sqlerr.NotFound("sessions", sql.ErrNoRows)
	}
	p := f.created[id-1]
	return &model.Session{ID: id, StartPoint: p.StartPoint, EndPoint: p.EndPoint}, nil
}

type fakeNodes struct {
	nodes []model.Node
	err   error
}

func (f *fakeNodes) Create(_ context.Context, sessionID int64, qrCode string) (*model.Node, error) {
	if f.err != nil {
		return nil, f.err
	}
	n := model.Node{ID: int64(len(f.nodes) + 1), SessionID: sessionID, QRCode: qrCode, Timestamp: time.Now()}
	f.nodes = append(f.nodes, n)
	return &n, nil
}

func (f *fakeNodes) ListBySession(_ context.Context, sessionID int64) ([]model.Node, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Node, 0)
	for _, n := range f.nodes {
		if n.SessionID == sessionID {
			out = append(out, n)
		}
	}
	return out, nil
}

func testServer() *server.Server {
	log := zerolog.Nop()
	return &server.Server{Logger: &log}
}

func TestSessionService_StartSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc := NewSessionService(testServer(), sessions, &fakeNodes{})

	first, err := svc.StartSession(context.Background(), &model.StartSessionPayload{StartPoint: "A", EndPoint: "B"})
	require.NoError(t, err)
	second, err := svc.StartSession(context.Background(), &model.StartSessionPayload{StartPoint: "C", EndPoint: "D"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.SessionID)
	assert.Equal(t, int64(2), second.SessionID)
	assert.Len(t, sessions.created, 2)
}

func TestSessionService_StartSessionStorageError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewSessionService(testServer(), &fakeSessions{err: boom}, &fakeNodes{})

	_, err := svc.StartSession(context.Background(), &model.StartSessionPayload{StartPoint: "A", EndPoint: "B"})
	assert.ErrorIs(t, err, boom)
}

func TestSessionService_GetSession(t *testing.T) {
	sessions := &fakeSessions{}
	nodes := &fakeNodes{}
	svc := NewSessionService(testServer(), sessions, nodes)
	ctx := context.Background()

	started, err := svc.StartSession(ctx, &model.StartSessionPayload{StartPoint: "A", EndPoint: "B"})
	require.NoError(t, err)
	_, err = nodes.Create(ctx, started.SessionID, "QR1")
	require.NoError(t, err)
	_, err = nodes.Create(ctx, 99, "OTHER")
	require.NoError(t, err)

	detail, err := svc.GetSession(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "A", detail.Session.StartPoint)
	require.Len(t, detail.Nodes, 1)
	assert.Equal(t, "QR1", detail.Nodes[0].QRCode)
}

func TestSessionService_GetSessionNotFound(t *testing.T) {
	svc := NewSessionService(testServer(), &fakeSessions{}, &fakeNodes{})

	_, err := svc.GetSession(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, sqlerr.IsNoRows(err))
}

func TestNodeService_AddNode(t *testing.T) {
	nodes := &fakeNodes{}
	svc := NewNodeService(testServer(), nodes)

	res, err := svc.AddNode(context.Background(), &model.AddNodePayload{SessionID: 1, QRCode: "QR123"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, nodes.nodes, 1)
	assert.Equal(t, int64(1), nodes.nodes[0].SessionID)
	assert.Equal(t, "QR123", nodes.nodes[0].QRCode)
}

func TestNodeService_AddNodeStorageError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewNodeService(testServer(), &fakeNodes{err: boom})

	res, err := svc.AddNode(context.Background(), &model.AddNodePayload{SessionID: 1, QRCode: "QR"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}

func TestNodeService_ListNodes(t *testing.T) {
	nodes := &fakeNodes{}
	svc := NewNodeService(testServer(), nodes)
	ctx := context.Background()

	for _, code := range []string{"A", "B"} {
		_, err := svc.AddNode(ctx, &model.AddNodePayload{SessionID: 3, QRCode: code})
		require.NoError(t, err)
	}

	res, err := svc.ListNodes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, "A", res.Nodes[0].QRCode)

	empty, err := svc.ListNodes(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, empty.Nodes)
}

func TestServices_LogThroughRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLog := zerolog.New(&buf).With().Str("request_id", "req-7").Logger()
	ctx := reqLog.WithContext(context.Background())

	sessions := NewSessionService(testServer(), &fakeSessions{}, &fakeNodes{})
	_, err := sessions.StartSession(ctx, &model.StartSessionPayload{StartPoint: "A", EndPoint: "B"})
	require.NoError(t, err)

	nodes := NewNodeService(testServer(), &fakeNodes{})
	_, err = nodes.AddNode(ctx, &model.AddNodePayload{SessionID: 1, QRCode: "QR1"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "session started")
	assert.Contains(t, out, "node recorded")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"request_id":"req-7"`)))
}
