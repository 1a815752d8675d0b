package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tristendillon/modelsync/core/logger"
	"github.com/tristendillon/modelsync/core/models"
	"github.com/tristendillon/modelsync/core/schema"
)

var ErrSubscriptionClosed = errors.New("schema subscription closed")

// Watch runs a pass immediately and then once per burst of model-updated
// notifications until ctx is done. Notifications that arrive while a pass
// runs are folded into a single follow-up pass. Failed passes are logged and
// the loop keeps going.
func (g *ModelGenerator) Watch(ctx context.Context, session schema.Session) error {
	stage := g.cfg.Watch.Stage
	debounce, err := g.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	sub, err := session.Subscribe(ctx, stage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to stage %s: %w", stage, err)
	}
	defer sub.Close()

	ws, err := session.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch schema: %w", err)
	}

	logger.Info("Watching schema changes at workspace '%s' (%s)...", ws.Name, ws.ID)
	logger.Info("Source code model location: %s", g.cfg.Output.Location)

	if _, err := g.Generate(ws); err != nil {
		logger.Error("Update failed: %v", err)
	}

	notifications := sub.Notifications()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrSubscriptionClosed
			}
			if !n.IsModelUpdate() {
				logger.Debug("Ignoring %s notification", n.Type)
				continue
			}

			if !settle(ctx, notifications, debounce) {
				return nil
			}
			g.refresh(ctx, session)
		}
	}
}

// settle waits out the debounce window and then drains whatever is queued,
// so one pass covers the whole burst. It returns false when ctx ends first.
func settle(ctx context.Context, notifications <-chan models.Notification, debounce time.Duration) bool {
	if debounce > 0 {
		timer := time.NewTimer(debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}

	for {
		select {
		case _, ok := <-notifications:
			if !ok {
				return true
			}
		default:
			return true
		}
	}
}

func (g *ModelGenerator) refresh(ctx context.Context, session schema.Session) {
	ws, err := session.Snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("Failed to fetch schema: %v", err)
		}
		return
	}
	if _, err := g.Generate(ws); err != nil {
		logger.Error("Update failed: %v", err)
	}
}
