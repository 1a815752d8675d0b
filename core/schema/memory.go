package schema

import (
	"context"
	"sync"
	"time"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
)

// MemorySession holds a workspace in memory and fans notifications out to its
// subscribers. The file session and the schema server build on it.
type MemorySession struct {
	mu        sync.Mutex
	workspace *models.Workspace
	subs      map[*memorySubscription]struct{}
	closed    bool
}

func NewMemorySession(ws *models.Workspace) *MemorySession {
	return &MemorySession{
		workspace: ws,
		subs:      make(map[*memorySubscription]struct{}),
	}
}

func (s *MemorySession) Snapshot(ctx context.Context) (*models.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.workspace == nil {
		return nil, ErrNoWorkspace
	}
	return s.workspace, nil
}

// Set replaces the workspace without notifying subscribers.
func (s *MemorySession) Set(ws *models.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspace = ws
}

// Update replaces the workspace and tells every subscriber about it.
func (s *MemorySession) Update(ws *models.Workspace) {
	s.Set(ws)
	s.Publish(models.Notification{Type: models.ModelUpdated, At: time.Now()})
}

// Publish delivers n to every open subscription without blocking. A
// notification with an empty stage reaches all stages.
func (s *MemorySession) Publish(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subs {
		if n.Stage != "" && n.Stage != sub.stage {
			continue
		}
		out := n
		out.Stage = sub.stage
		select {
		case sub.ch <- out:
		default:
			logger.Debug("Subscription %s is full, dropping %s", sub.stage, n.Type)
		}
	}
}

func (s *MemorySession) Subscribe(ctx context.Context, stage string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	sub := &memorySubscription{
		session: s,
		stage:   stage,
		ch:      make(chan models.Notification, subscriptionBuffer),
	}
	s.subs[sub] = struct{}{}
	logger.Debug("Opened subscription on stage %s", stage)
	return sub, nil
}

// Subscribers returns the number of open subscriptions.
func (s *MemorySession) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *MemorySession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for sub := range s.subs {
		delete(s.subs, sub)
		close(sub.ch)
	}
	return nil
}

type memorySubscription struct {
	session *MemorySession
	stage   string
	ch      chan models.Notification
}

func (sub *memorySubscription) Notifications() <-chan models.Notification {
	return sub.ch
}

func (sub *memorySubscription) Close() error {
	s := sub.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.ch)
		logger.Debug("Closed subscription on stage %s", sub.stage)
	}
	return nil
}
