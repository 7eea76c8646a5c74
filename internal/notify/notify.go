package notify

import (
	"context"

	"go.uber.org/multierr"
)

// Sender delivers a human-readable alert to some channel.
type Sender interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans an alert out to every non-nil sender and reports all failures.
type Multi []Sender

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, s := range m {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Send(ctx, title, text))
	}
	return err
}
