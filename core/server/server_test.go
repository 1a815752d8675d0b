package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/schema"
	"github.com/tristendillon/modelsync/core/wire"
)

func TestMain(m *testing.M) {
	logger.SetWriterForAll(io.Discard)
	m.Run()
}

func shopWorkspace(t *testing.T) *models.Workspace {
	t.Helper()
	ws, err := schema.Build(&schema.Document{
		Name: "Shop",
		Modules: []schema.ModuleDocument{
			{Name: "System", System: true, Classes: []schema.ClassDocument{{Name: "Document"}}},
			{Name: "Sales", Classes: []schema.ClassDocument{
				{Name: "Order", Ancestor: "Document", Properties: []schema.PropertyDocument{
					{Name: "total", Type: "number"},
				}},
			}},
		},
	})
	require.NoError(t, err)
	return ws
}

func startServer(t *testing.T, session schema.Session) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(NewServer(session, "localhost", 0).Handler())
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHealthAndSchemaEndpoints(t *testing.T) {
	ws := shopWorkspace(t)
	srv, _ := startServer(t, schema.NewMemorySession(ws))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc schema.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, schema.ToDocument(ws), &doc)
}

func TestSchemaEndpointWithoutWorkspace(t *testing.T) {
	srv, _ := startServer(t, schema.NewMemorySession(nil))

	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRemoteSessionSnapshot(t *testing.T) {
	ws := shopWorkspace(t)
	_, url := startServer(t, schema.NewMemorySession(ws))

	remote := schema.NewRemoteSession(url)
	defer remote.Close()

	got, err := remote.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.ToDocument(ws), schema.ToDocument(got))

	order, ok := got.FindClass("Order")
	require.True(t, ok)
	assert.Equal(t, "Document", order.AncestorName())
}

func TestRemoteSessionSnapshotUnavailable(t *testing.T) {
	_, url := startServer(t, schema.NewMemorySession(nil))

	remote := schema.NewRemoteSession(url)
	defer remote.Close()

	_, err := remote.Snapshot(context.Background())
	var werr wire.ErrorData
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, wire.CodeUnavailable, werr.Code)
}

func TestRemoteSessionReceivesNotifications(t *testing.T) {
	local := schema.NewMemorySession(shopWorkspace(t))
	_, url := startServer(t, local)

	remote := schema.NewRemoteSession(url)
	sub, err := remote.Subscribe(context.Background(), "cli.watcher")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return local.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	local.Update(shopWorkspace(t))

	select {
	case n, ok := <-sub.Notifications():
		require.True(t, ok)
		assert.True(t, n.IsModelUpdate())
		assert.Equal(t, "cli.watcher", n.Stage)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification forwarded")
	}

	require.NoError(t, remote.Close())
	_, open := <-sub.Notifications()
	assert.False(t, open, "closing the session closes its subscriptions")
	require.Eventually(t, func() bool { return local.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, err = remote.Subscribe(context.Background(), "cli.watcher")
	assert.ErrorIs(t, err, schema.ErrSessionClosed)
}

func TestSubscriptionEndsWhenServerSessionCloses(t *testing.T) {
	local := schema.NewMemorySession(shopWorkspace(t))
	_, url := startServer(t, local)

	remote := schema.NewRemoteSession(url)
	defer remote.Close()
	sub, err := remote.Subscribe(context.Background(), "cli.watcher")
	require.NoError(t, err)

	require.NoError(t, local.Close())

	select {
	case _, ok := <-sub.Notifications():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription stayed open")
	}
}

func TestWebSocketProtocol(t *testing.T) {
	_, url := startServer(t, schema.NewMemorySession(shopWorkspace(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	roundTrip := func(msg wire.ClientMessage) wire.Reply {
		t.Helper()
		require.NoError(t, wsjson.Write(ctx, conn, msg))
		var reply wire.Reply
		require.NoError(t, wsjson.Read(ctx, conn, &reply))
		return reply
	}

	reply := roundTrip(wire.ClientMessage{Type: wire.TypePing, ID: "1"})
	assert.Equal(t, wire.TypePong, reply.Type)
	assert.Equal(t, "1", reply.RequestID)

	reply = roundTrip(wire.ClientMessage{Type: "rename", ID: "2"})
	assert.Equal(t, wire.TypeError, reply.Type)
	assert.Equal(t, "2", reply.RequestID)
	var werr wire.ErrorData
	require.ErrorAs(t, reply.Err(), &werr)
	assert.Equal(t, wire.CodeUnknownType, werr.Code)

	reply = roundTrip(wire.ClientMessage{Type: wire.TypeSubscribe, ID: "3"})
	require.ErrorAs(t, reply.Err(), &werr)
	assert.Equal(t, wire.CodeInvalidData, werr.Code)

	msg, err := wire.NewClientMessage(wire.TypeSubscribe, "4", wire.SubscribeData{Stage: "ci"})
	require.NoError(t, err)
	reply = roundTrip(msg)
	assert.Equal(t, wire.TypeSubscribed, reply.Type)
	assert.NoError(t, reply.Err())

	conn.Close(websocket.StatusNormalClosure, "")
}
