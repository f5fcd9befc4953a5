// Package worker contains the broadcast dispatcher: batched, concurrency
// bounded fan-out of one message body to every subscriber.
package worker

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/domain/repository"
)

// Broadcaster fans one message out to many recipients. Recipients within a
// batch are attempted concurrently; batches are strictly sequential with a
// pause in between to stay under transport rate limits.
type Broadcaster struct {
	messenger   botapi.Messenger
	subscribers repository.SubscriberRepository
	batchSize   int
	pause       time.Duration
	logger      *slog.Logger
}

// NewBroadcaster constructs the dispatcher.
func NewBroadcaster(messenger botapi.Messenger, subscribers repository.SubscriberRepository, batchSize int, pause time.Duration, logger *slog.Logger) *Broadcaster {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Broadcaster{
		messenger:   messenger,
		subscribers: subscribers,
		batchSize:   batchSize,
		pause:       pause,
		logger:      logger,
	}
}

// Broadcast delivers text to every recipient. Identifiers that fail to
// normalize are excluded up front and logged; one recipient's delivery
// failure never affects the others. An interrupted run reports the
// unattempted remainder as skipped, never as failed.
// Always sent+failed+excluded+skipped == total.
func (b *Broadcaster) Broadcast(ctx context.Context, text string, recipients []string) model.BroadcastReport {
	report := model.BroadcastReport{Total: len(recipients)}

	ids := make([]int64, 0, len(recipients))
	for _, raw := range recipients {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id == 0 {
			report.Excluded++
			b.logger.Warn("recipient excluded from broadcast", slog.String("recipient", raw))
			continue
		}
		ids = append(ids, id)
	}

	var mu sync.Mutex
	for start := 0; start < len(ids); start += b.batchSize {
		end := start + b.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		var g errgroup.Group
		for _, id := range ids[start:end] {
			id := id
			g.Go(func() error {
				if _, err := b.messenger.Send(ctx, id, text, nil); err != nil {
					b.logger.Warn("broadcast delivery failed",
						slog.Int64("recipient", id), slog.String("error", err.Error()))
					mu.Lock()
					report.Failed++
					mu.Unlock()
					return nil
				}

				mu.Lock()
				report.Sent++
				mu.Unlock()

				// Bookkeeping only: a failed timestamp update does not
				// turn a delivered message into a failure.
				if err := b.subscribers.MarkNotified(ctx, id); err != nil {
					b.logger.Warn("mark notified failed",
						slog.Int64("recipient", id), slog.String("error", err.Error()))
				}
				return nil
			})
		}
		_ = g.Wait()

		if end < len(ids) {
			select {
			case <-ctx.Done():
				report.Skipped = len(ids) - end
				b.logger.Warn("broadcast interrupted", slog.Int("skipped", report.Skipped))
				return report
			case <-time.After(b.pause):
			}
		}
	}

	b.logger.Info("broadcast finished",
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("excluded", report.Excluded),
		slog.Int("skipped", report.Skipped),
		slog.Int("total", report.Total))
	return report
}

// BroadcastToSubscribers loads the subscriber list and dispatches to it.
func (b *Broadcaster) BroadcastToSubscribers(ctx context.Context, text string) (model.BroadcastReport, error) {
	recipients, err := b.subscribers.ListIDs(ctx)
	if err != nil {
		return model.BroadcastReport{}, err
	}
	return b.Broadcast(ctx, text, recipients), nil
}
