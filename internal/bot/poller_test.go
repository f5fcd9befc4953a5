package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
)

type pollStep struct {
	updates []botapi.Update
	err     error
}

// sourceStub serves a scripted sequence of poll results, then blocks until
// the context is canceled.
type sourceStub struct {
	mu      sync.Mutex
	steps   []pollStep
	offsets []int64
	drained chan struct{}
}

func newSourceStub(steps ...pollStep) *sourceStub {
	return &sourceStub{steps: steps, drained: make(chan struct{})}
}

func (s *sourceStub) Updates(ctx context.Context, offset int64) ([]botapi.Update, error) {
	s.mu.Lock()
	s.offsets = append(s.offsets, offset)
	if len(s.steps) == 0 {
		s.mu.Unlock()
		select {
		case <-s.drained:
		default:
			close(s.drained)
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()
	return step.updates, step.err
}

func (s *sourceStub) seenOffsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.offsets...)
}

func newTestPoller(t *testing.T, source botapi.UpdateSource) *Poller {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewPoller(source, newFixture(t).router, logger)
}

func TestPollerAdvancesOffset(t *testing.T) {
	source := newSourceStub(
		pollStep{updates: []botapi.Update{
			{ID: 4, From: customerID, Text: "/start"},
			{ID: 5, From: customerID, Text: "0912345678"},
		}},
	)
	poller := newTestPoller(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	select {
	case <-source.drained:
	case <-time.After(time.Second):
		t.Fatal("expected poller to drain the scripted updates")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected poller to return after cancel")
	}

	offsets := source.seenOffsets()
	if len(offsets) < 2 || offsets[0] != 0 || offsets[1] != 6 {
		t.Fatalf("unexpected offsets %v", offsets)
	}
}

func TestPollerBacksOffOnRateLimit(t *testing.T) {
	source := newSourceStub(
		pollStep{err: botapi.TooManyRequestsError{RetryAfter: time.Millisecond}},
		pollStep{updates: []botapi.Update{{ID: 9, From: customerID, Text: "/start"}}},
	)
	poller := newTestPoller(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	select {
	case <-source.drained:
	case <-time.After(time.Second):
		t.Fatal("expected poller to retry after the rate limit")
	}
	cancel()
	<-done

	offsets := source.seenOffsets()
	if len(offsets) < 3 || offsets[1] != 0 || offsets[2] != 10 {
		t.Fatalf("unexpected offsets %v", offsets)
	}
}

func TestPollerStopsDuringBackoff(t *testing.T) {
	source := newSourceStub(pollStep{err: errors.New("transport down")})
	poller := newTestPoller(t, source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected cancel to interrupt the retry backoff")
	}
}

func TestPollerStopsWhenAlreadyCanceled(t *testing.T) {
	poller := newTestPoller(t, newSourceStub())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := poller.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
