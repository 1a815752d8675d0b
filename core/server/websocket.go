package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/schema"
	"github.com/tristendillon/modelsync/core/wire"
)

type wsHandler struct {
	session schema.Session
}

func newWSHandler(session schema.Session) *wsHandler {
	return &wsHandler{session: session}
}

// ServeHTTP upgrades to WebSocket and runs the message loop. Subscriptions
// opened on a connection are closed with it.
func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error("websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var (
		wg   sync.WaitGroup
		subs []schema.Subscription
	)
	defer func() {
		cancel()
		for _, sub := range subs {
			sub.Close()
		}
		wg.Wait()
	}()

	for {
		var msg wire.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 {
				logger.Debug("websocket read: %v", err)
			}
			return
		}

		switch msg.Type {
		case wire.TypeSnapshot:
			h.handleSnapshot(ctx, conn, msg)
		case wire.TypeSubscribe:
			sub, ok := h.handleSubscribe(ctx, conn, msg)
			if !ok {
				continue
			}
			subs = append(subs, sub)
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.forward(ctx, conn, sub)
			}()
		case wire.TypePing:
			h.send(ctx, conn, wire.ServerMessage{Type: wire.TypePong, RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, wire.CodeUnknownType, fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *wsHandler) handleSnapshot(ctx context.Context, conn *websocket.Conn, msg wire.ClientMessage) {
	ws, err := h.session.Snapshot(ctx)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, wire.CodeUnavailable, err.Error())
		return
	}
	h.send(ctx, conn, wire.ServerMessage{
		Type:      wire.TypeSnapshot,
		RequestID: msg.ID,
		Data:      schema.ToDocument(ws),
	})
}

func (h *wsHandler) handleSubscribe(ctx context.Context, conn *websocket.Conn, msg wire.ClientMessage) (schema.Subscription, bool) {
	var data wire.SubscribeData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Stage == "" {
		h.sendError(ctx, conn, msg.ID, wire.CodeInvalidData, "subscribe needs a stage")
		return nil, false
	}

	sub, err := h.session.Subscribe(ctx, data.Stage)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, wire.CodeUnavailable, err.Error())
		return nil, false
	}

	h.send(ctx, conn, wire.ServerMessage{
		Type:      wire.TypeSubscribed,
		RequestID: msg.ID,
		Data:      wire.SubscribedData{Stage: data.Stage},
	})
	logger.Info("Client subscribed to stage %s", data.Stage)
	return sub, true
}

func (h *wsHandler) forward(ctx context.Context, conn *websocket.Conn, sub schema.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.Notifications():
			if !ok {
				// The session went away underneath an open connection.
				if ctx.Err() == nil {
					conn.Close(websocket.StatusGoingAway, "session closed")
				}
				return
			}
			h.send(ctx, conn, wire.ServerMessage{Type: wire.TypeNotification, Data: n})
		}
	}
}

func (h *wsHandler) send(ctx context.Context, conn *websocket.Conn, msg wire.ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		logger.Debug("websocket write: %v", err)
	}
}

func (h *wsHandler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, wire.ServerMessage{
		Type:      wire.TypeError,
		RequestID: requestID,
		Data: wire.ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
