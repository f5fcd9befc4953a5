package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
)

const pollRetryBackoff = 3 * time.Second

// Poller consumes the transport's long-poll update stream and feeds each
// event to the router. Offset tracking guarantees every update is handed
// over at most once.
type Poller struct {
	source botapi.UpdateSource
	router *Router
	logger *slog.Logger
}

// NewPoller constructs the poller.
func NewPoller(source botapi.UpdateSource, router *Router, logger *slog.Logger) *Poller {
	return &Poller{source: source, router: router, logger: logger}
}

// Run polls until the context is canceled. Transport errors back off and
// retry; they never terminate the loop.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.source.Updates(ctx, offset)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}

			wait := pollRetryBackoff
			var tooMany botapi.TooManyRequestsError
			if errors.As(err, &tooMany) {
				wait = tooMany.RetryAfter
			}
			p.logger.Warn("update poll failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", wait))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		for _, u := range updates {
			p.router.Handle(ctx, u)
			offset = u.ID + 1
		}
	}
}
