package health

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoPlans is reported when the plan registry is empty.
var ErrNoPlans = errors.New("no plans loaded")

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PlansCheck fails while count returns zero. A non-nil lastErr reports the
// most recent load failure, which is surfaced even when older plans remain.
func PlansCheck(count func() int, lastErr func() error) CheckFunc {
	return func(ctx context.Context) error {
		if count() == 0 {
			if lastErr != nil {
				if err := lastErr(); err != nil {
					return fmt.Errorf("%w: %v", ErrNoPlans, err)
				}
			}
			return ErrNoPlans
		}
		return nil
	}
}

// PingCheck wraps a Pinger as a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
