package poller

import (
	"context"
	"log"
	"time"

	"github.com/reachkrishnaraj/ai-coding-agent-pipeline-sub000/internal/domain"
)

type ReminderSender interface {
	FindPending() ([]domain.Reminder, error)
	SendReminder(ctx context.Context, id string) error
}

// Poller periodically asks the engine for due reminders and sends each one.
// It is the single active scheduler instance; duplicate-send protection is
// its responsibility, not the engine's.
type Poller struct {
	svc      ReminderSender
	interval time.Duration
}

func New(svc ReminderSender, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{svc: svc, interval: interval}
}

func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		p.Poll(ctx)
	}
}

// Poll runs one cycle: find due reminders, send each. Send errors are logged
// and do not stop the cycle; the failure-count mechanism owns retries.
func (p *Poller) Poll(ctx context.Context) {
	due, err := p.svc.FindPending()
	if err != nil {
		log.Printf("reminder poll error: %v", err)
		return
	}
	for _, r := range due {
		if ctx.Err() != nil {
			return
		}
		if err := p.svc.SendReminder(ctx, r.ID); err != nil {
			log.Printf("reminder %s send error: %v", r.ID, err)
		}
	}
}
