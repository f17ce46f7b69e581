// Package notify provides Dispatcher implementations the engine hands
// reminder payloads to. Delivery mechanics (templates, digests, per-channel
// preferences) belong to the notification service proper, not here.
package notify

import (
	"context"
	"errors"
	"log"
)

// Target matches usecase.Dispatcher.
type Target interface {
	SendNotification(ctx context.Context, userID, eventKey string, payload map[string]any) error
}

// LogDispatcher records the notification in the process log. It stands in
// for the in-app channel when no external delivery is configured.
type LogDispatcher struct{}

func (LogDispatcher) SendNotification(_ context.Context, userID, eventKey string, payload map[string]any) error {
	log.Printf("notification %s for user %s: %v", eventKey, userID, payload["reminderTitle"])
	return nil
}

// Multi fans one notification out to every target. All targets are attempted;
// their errors are joined.
type Multi struct {
	targets []Target
}

func NewMulti(targets ...Target) Multi {
	return Multi{targets: targets}
}

func (m Multi) SendNotification(ctx context.Context, userID, eventKey string, payload map[string]any) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendNotification(ctx, userID, eventKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
