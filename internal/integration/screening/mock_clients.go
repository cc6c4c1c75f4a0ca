package screening

import (
	"context"
	"strings"
	"time"
)

// MockKYCClient verifies everyone after Latency.
type MockKYCClient struct {
	Latency time.Duration
	Err     error
}

func (c MockKYCClient) Verify(ctx context.Context, _ Subject) (KYCResult, error) {
	if err := sleep(ctx, c.Latency); err != nil {
		return KYCResult{}, err
	}
	if c.Err != nil {
		return KYCResult{}, c.Err
	}
	return KYCResult{Verified: true, Provider: "mock_kyc"}, nil
}

// MockSanctionsClient lists subjects whose last name appears in Listed.
type MockSanctionsClient struct {
	Latency time.Duration
	Listed  []string
	Err     error
}

func (c MockSanctionsClient) Check(ctx context.Context, subject Subject) (SanctionsResult, error) {
	if err := sleep(ctx, c.Latency); err != nil {
		return SanctionsResult{}, err
	}
	if c.Err != nil {
		return SanctionsResult{}, c.Err
	}
	for _, name := range c.Listed {
		if strings.EqualFold(name, subject.LastName) {
			return SanctionsResult{Listed: true, Source: "mock_ofac"}, nil
		}
	}
	return SanctionsResult{Source: "mock_ofac"}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
