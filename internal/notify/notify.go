// Package notify delivers text messages to a user's chat.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier sends one message to one chat. Implementations must honor ctx.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// DeliveryError reports a failed send. Callers log it and carry on.
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering to chat %d: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, chatID int64, text string) error

// Send calls f.
func (f Func) Send(ctx context.Context, chatID int64, text string) error {
	return f(ctx, chatID, text)
}

// Writer prints messages instead of sending them. It backs dry runs and
// installations without a bot token.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Send writes the message with a chat header.
func (n *Writer) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "--- chat %d ---\n%s\n\n", chatID, text); err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}
	return nil
}
