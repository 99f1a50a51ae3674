// Package optimistic implements apply-then-confirm updates with rollback.
package optimistic

import (
	"context"
	"errors"
)

// ErrIncomplete is returned by Execute when a command lacks Apply or Confirm.
var ErrIncomplete = errors.New("optimistic: command needs Apply and Confirm")

// Command captures one optimistic update. Apply writes a value into local
// state; Confirm asks the source of truth and returns the authoritative value.
type Command[T any] struct {
	Previous T
	Next     T
	Apply    func(ctx context.Context, v T) error
	Confirm  func(ctx context.Context) (T, error)
	// OnRollback, when set, observes the confirmation error after Previous
	// has been restored.
	OnRollback func(err error)
}

// Execute applies Next, confirms it and stores the confirmed value. When
// confirmation fails Previous is applied again and the error returned.
func (c Command[T]) Execute(ctx context.Context) (T, error) {
	if c.Apply == nil || c.Confirm == nil {
		return c.Previous, ErrIncomplete
	}
	if err := c.Apply(ctx, c.Next); err != nil {
		return c.Previous, err
	}
	confirmed, err := c.Confirm(ctx)
	if err != nil {
		if rbErr := c.Apply(ctx, c.Previous); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		if c.OnRollback != nil {
			c.OnRollback(err)
		}
		return c.Previous, err
	}
	if err := c.Apply(ctx, confirmed); err != nil {
		return confirmed, err
	}
	return confirmed, nil
}
