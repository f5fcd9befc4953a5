// Package collector implements the per-user input state machine that maps a
// sequence of free-form messages onto an ordered schema of typed fields.
package collector

import (
	"sync"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
)

// Field describes one collectable value: how to ask for it and how to accept it.
type Field struct {
	Name      string
	Prompt    string
	Validate  func(string) error
	Normalize func(string) string
}

// Schema is the ordered field sequence collected for one flow.
type Schema []Field

// Kind tags the outcome of a single submitted input.
type Kind int

const (
	// KindPrompt asks the user for the next field.
	KindPrompt Kind = iota
	// KindReject refuses the input and re-requests the same field.
	KindReject
	// KindComplete carries the full validated field set.
	KindComplete
)

// Outcome is the collector's answer to one submitted input.
type Outcome struct {
	Kind   Kind
	Field  Field
	Reason string
	Values map[string]string
}

type session struct {
	cursor int
	values map[string]string
}

// Collector tracks at most one active session per user over a fixed schema.
// It performs no sends and no persistence; callers own prompting and storage.
type Collector struct {
	mu       sync.Mutex
	schema   Schema
	sessions map[int64]*session
}

// New constructs a collector over the given schema.
func New(schema Schema) *Collector {
	return &Collector{
		schema:   schema,
		sessions: make(map[int64]*session),
	}
}

// Start opens a fresh session for the user, discarding any previous one,
// and returns the prompt for the first field.
func (c *Collector) Start(userID int64) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[userID] = &session{values: make(map[string]string)}
	return Outcome{Kind: KindPrompt, Field: c.schema[0]}
}

// Active reports whether the user has a session in progress.
func (c *Collector) Active(userID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.sessions[userID]
	return ok
}

// Clear drops the user's session, if any.
func (c *Collector) Clear(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, userID)
}

// Submit feeds one raw input into the user's session. A rejected input never
// advances the cursor; the same field is re-requested without limit. The
// session survives a Complete outcome until the caller clears it.
func (c *Collector) Submit(userID int64, raw string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[userID]
	if !ok {
		return Outcome{}, domainErrors.ErrNotFound
	}

	field := c.schema[s.cursor]
	value := raw
	if field.Normalize != nil {
		value = field.Normalize(raw)
	}
	if field.Validate != nil {
		if err := field.Validate(value); err != nil {
			return Outcome{Kind: KindReject, Field: field, Reason: err.Error()}, nil
		}
	}

	s.values[field.Name] = value
	s.cursor++

	if s.cursor >= len(c.schema) {
		values := make(map[string]string, len(s.values))
		for k, v := range s.values {
			values[k] = v
		}
		return Outcome{Kind: KindComplete, Values: values}, nil
	}

	return Outcome{Kind: KindPrompt, Field: c.schema[s.cursor]}, nil
}
