package typing

import (
	"context"
	"fmt"
	"io"
)

// Backend receives expansion output for typing.
type Backend interface {
	Send(ctx context.Context, events []Event) error
}

// WriterBackend writes events to an io.Writer. Text is written verbatim and
// keys as their tokens, or as [name] when Bracketed is set.
type WriterBackend struct {
	W         io.Writer
	Bracketed bool
}

// Send writes events in order.
func (b *WriterBackend) Send(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		var s string
		switch e.Kind {
		case EventText:
			s = e.Text
		case EventKey:
			s = e.Key.Token()
			if b.Bracketed {
				s = "[" + string(e.Key) + "]"
			}
		default:
			return fmt.Errorf("unknown event kind: %s", e.Kind)
		}

		if _, err := io.WriteString(b.W, s); err != nil {
			return fmt.Errorf("write %s event: %w", e.Kind, err)
		}
	}
	return nil
}
