package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/wire"
)

// RemoteSession reads the schema from a schema server over WebSocket. Each
// snapshot uses a short-lived connection, each subscription keeps its own.
type RemoteSession struct {
	url string

	mu     sync.Mutex
	subs   map[*remoteSubscription]struct{}
	closed bool
}

func NewRemoteSession(url string) *RemoteSession {
	return &RemoteSession{
		url:  url,
		subs: make(map[*remoteSubscription]struct{}),
	}
}

func (s *RemoteSession) URL() string {
	return s.url
}

func (s *RemoteSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *RemoteSession) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.url, err)
	}
	return conn, nil
}

// request sends one message and waits for the reply carrying its ID.
func request(ctx context.Context, conn *websocket.Conn, msgType string, data any) (wire.Reply, error) {
	id := uuid.NewString()
	msg, err := wire.NewClientMessage(msgType, id, data)
	if err != nil {
		return wire.Reply{}, err
	}
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return wire.Reply{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	for {
		var reply wire.Reply
		if err := wsjson.Read(ctx, conn, &reply); err != nil {
			return wire.Reply{}, fmt.Errorf("failed to read %s reply: %w", msgType, err)
		}
		if reply.RequestID != id {
			continue
		}
		if err := reply.Err(); err != nil {
			return wire.Reply{}, err
		}
		return reply, nil
	}
}

func (s *RemoteSession) Snapshot(ctx context.Context) (*models.Workspace, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.CloseNow()

	reply, err := request(ctx, conn, wire.TypeSnapshot, nil)
	if err != nil {
		return nil, err
	}
	if reply.Type != wire.TypeSnapshot {
		return nil, fmt.Errorf("unexpected reply %q to snapshot", reply.Type)
	}

	var doc Document
	if err := json.Unmarshal(reply.Data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	conn.Close(websocket.StatusNormalClosure, "")

	ws, err := Build(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return ws, nil
}

func (s *RemoteSession) Subscribe(ctx context.Context, stage string) (Subscription, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := request(ctx, conn, wire.TypeSubscribe, wire.SubscribeData{Stage: stage})
	if err != nil {
		conn.CloseNow()
		return nil, err
	}
	if reply.Type != wire.TypeSubscribed {
		conn.CloseNow()
		return nil, fmt.Errorf("unexpected reply %q to subscribe", reply.Type)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	sub := &remoteSubscription{
		session: s,
		stage:   stage,
		conn:    conn,
		cancel:  cancel,
		ch:      make(chan models.Notification, subscriptionBuffer),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		conn.CloseNow()
		return nil, ErrSessionClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go sub.readLoop(readCtx)
	logger.Debug("Subscribed to stage %s at %s", stage, s.url)
	return sub, nil
}

func (s *RemoteSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*remoteSubscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	return nil
}

type remoteSubscription struct {
	session *RemoteSession
	stage   string
	conn    *websocket.Conn
	cancel  context.CancelFunc
	ch      chan models.Notification
	done    chan struct{}
	once    sync.Once
}

func (sub *remoteSubscription) Notifications() <-chan models.Notification {
	return sub.ch
}

func (sub *remoteSubscription) readLoop(ctx context.Context) {
	defer close(sub.done)
	defer close(sub.ch)

	for {
		var reply wire.Reply
		if err := wsjson.Read(ctx, sub.conn, &reply); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Warn("Subscription to %s lost: %v", sub.stage, err)
			}
			return
		}

		switch reply.Type {
		case wire.TypeNotification:
			var n models.Notification
			if err := json.Unmarshal(reply.Data, &n); err != nil {
				logger.Warn("Ignoring malformed notification: %v", err)
				continue
			}
			select {
			case sub.ch <- n:
			default:
				logger.Debug("Subscription %s is full, dropping %s", sub.stage, n.Type)
			}
		case wire.TypeError:
			logger.Warn("Schema server: %v", reply.Err())
		}
	}
}

func (sub *remoteSubscription) Close() error {
	sub.once.Do(func() {
		sub.cancel()
		<-sub.done
		sub.conn.CloseNow()

		s := sub.session
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	})
	return nil
}
