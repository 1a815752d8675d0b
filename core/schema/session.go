package schema

import (
	"context"
	"errors"

	"github.com/tristendillon/modelsync/core/models"
)

var (
	ErrNoWorkspace   = errors.New("no workspace loaded")
	ErrSessionClosed = errors.New("session closed")
)

// Session gives access to the current schema and to change notifications.
type Session interface {
	// Snapshot returns the current workspace. Callers must not modify it.
	Snapshot(ctx context.Context) (*models.Workspace, error)
	// Subscribe opens a notification stream for a named, auto-updating stage.
	Subscribe(ctx context.Context, stage string) (Subscription, error)
	Close() error
}

type Subscription interface {
	// Notifications is closed when the subscription or its session closes.
	Notifications() <-chan models.Notification
	Close() error
}

// subscriptionBuffer bounds how many notifications queue for a slow reader.
// Once full, further notifications are dropped: a pending model-updated
// notification already triggers a pass that sees the latest schema.
const subscriptionBuffer = 16
