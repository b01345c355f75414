package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type demoProvider struct {
	pacing time.Duration
}

// NewDemoProvider returns a deterministic in-process provider for demo mode.
// Numbers ending in 9999 are rejected; everything else is accepted after a
// short pacing delay.
func NewDemoProvider() Provider {
	return &demoProvider{pacing: 75 * time.Millisecond}
}

func (p *demoProvider) Send(ctx context.Context, phoneNumber, script string) (*Result, error) {
	select {
	case <-time.After(p.pacing):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if strings.HasSuffix(phoneNumber, "9999") {
		return nil, &Rejection{Reason: "undeliverable destination"}
	}
	return &Result{ProviderRef: "demo-" + uuid.New().String()}, nil
}
