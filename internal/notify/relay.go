package notify

import (
	"context"
	"log/slog"
	"time"

	"craftmarket/internal/logging"
	"craftmarket/internal/models"
)

// Outbox is the notification backlog the relay drains.
type Outbox interface {
	ListUnpublishedNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationsPublished(ctx context.Context, ids []int64, at time.Time) error
	Now() time.Time
}

// Relay forwards stored notifications to a Publisher at a fixed interval.
type Relay struct {
	outbox    Outbox
	publisher Publisher
	interval  time.Duration
	batchSize int
	log       *slog.Logger
}

func NewRelay(outbox Outbox, publisher Publisher, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: 100,
		log:       logging.Component("notification-relay"),
	}
}

// Run drains the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("notification relay started", slog.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("notification relay stopped")
			return nil
		case <-ticker.C:
			for {
				n, err := r.Flush(ctx)
				if err != nil {
					r.log.Error("relay flush failed", logging.Err(err))
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// Flush publishes one batch and returns how many notifications it sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	batch, err := r.outbox.ListUnpublishedNotifications(ctx, r.batchSize)
	if err != nil || len(batch) == 0 {
		return 0, err
	}
	if err := r.publisher.Publish(ctx, batch); err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(batch))
	for _, n := range batch {
		ids = append(ids, n.ID)
	}
	if err := r.outbox.MarkNotificationsPublished(ctx, ids, r.outbox.Now()); err != nil {
		return 0, err
	}
	r.log.Debug("notifications published", slog.Int("count", len(batch)))
	return len(batch), nil
}
