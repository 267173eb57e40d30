// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cache

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/events"
)

// Mutation describes the cache side effects of a write.
type Mutation[T any] struct {
	// Name identifies the operation in notifications and logs.
	Name string
	// Success is the notification text on success. Defaults to Name.
	Success string
	// Failure prefixes the error message in the failure notification.
	Failure string
	// Invalidates returns the patterns to mark stale once the write succeeded.
	Invalidates func(T) []Pattern
	// OnSuccess runs before invalidation, typically to seed an entry with SetData.
	OnSuccess func(T)
}

// Mutate runs fn and applies m. On success the matched keys are invalidated
// and one events.Success is published. On failure the cache is not touched
// and one events.Failure is published.
func Mutate[T any](ctx context.Context, c *Client, m Mutation[T], fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		c.log.Debug("write failed", zap.String("op", m.Name), zap.Error(err))
		c.bus.Publish(events.Event{
			Type:      events.Failure,
			Operation: m.Name,
			Message:   failureMessage(m.Failure, err),
			Err:       err,
		})
		return v, err
	}

	if m.OnSuccess != nil {
		m.OnSuccess(v)
	}
	if m.Invalidates != nil {
		c.Invalidate(m.Invalidates(v)...)
	}

	msg := m.Success
	if msg == "" {
		msg = m.Name
	}
	c.bus.Publish(events.Event{Type: events.Success, Operation: m.Name, Message: msg})
	return v, nil
}

// Invalidates is a helper for mutations whose patterns do not depend on the result.
func Invalidates[T any](patterns ...Pattern) func(T) []Pattern {
	return func(T) []Pattern { return patterns }
}

func failureMessage(prefix string, err error) string {
	msg := err.Error()
	var e *apierr.E
	if stderrors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}
