package delivery

import (
	"context"
	"fmt"
)

// Rejection is a non-retryable provider refusal for one recipient. It is
// recorded as a failed drop, never as a processing error.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("delivery rejected: %s", r.Reason)
}

// Result is a successful hand-off to the delivery provider
type Result struct {
	ProviderRef string
}

// Provider abstracts the ringless-voicemail delivery backend
type Provider interface {
	Send(ctx context.Context, phoneNumber, script string) (*Result, error)
}
