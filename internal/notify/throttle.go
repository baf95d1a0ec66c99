package notify

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled spaces out sends to stay under the chat provider's rate limit.
type Throttled struct {
	next    Notifier
	limiter *rate.Limiter
}

// NewThrottled allows perSecond sends with a burst of one. perSecond <= 0 disables
// throttling.
func NewThrottled(next Notifier, perSecond float64) *Throttled {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, 1)}
}

// Send waits for a token, then forwards to the wrapped notifier.
func (t *Throttled) Send(ctx context.Context, chatID int64, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}
	return t.next.Send(ctx, chatID, text)
}
