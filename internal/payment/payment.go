// Package payment charges clients during onboarding. Only a simulated
// processor exists; it settles every charge after a fixed delay. A project
// that enables payment without an amount settles a zero charge.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clientkit/internal/task"
	"clientkit/pkg/token"
)

var ErrInvalidAmount = errors.New("payment amount must not be negative")

type Charge struct {
	ProjectID   string
	SessionID   string
	Amount      float64
	Description string
}

type Receipt struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Reference string    `json:"reference"`
}

type Processor interface {
	Charge(ctx context.Context, c Charge) (*Receipt, error)
}

type Simulated struct {
	delay time.Duration
	now   func() time.Time
}

var _ Processor = (*Simulated)(nil)

func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{
		delay: delay,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Charge blocks for the configured delay and then issues a receipt.
// Cancelling ctx during the delay abandons the charge.
func (s *Simulated) Charge(ctx context.Context, c Charge) (*Receipt, error) {
	if c.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	settle := task.After(ctx, s.delay, func(context.Context) (*Receipt, error) {
		return &Receipt{
			ID:        token.NewID(),
			Amount:    c.Amount,
			PaidAt:    s.now(),
			Reference: fmt.Sprintf("sim_%s", c.SessionID),
		}, nil
	})
	return settle.Wait(ctx)
}
