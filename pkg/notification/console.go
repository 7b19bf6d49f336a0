package notification

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console is a notify.Notifier that prints to a writer.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Send(ctx context.Context, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "📣 %s\n%s\n\n", subject, message)
	return err
}
