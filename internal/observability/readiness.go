package observability

import (
	"context"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// ReadinessGroup is ready when all of its checkers are ready.
type ReadinessGroup []sharedobs.ReadinessChecker

// CheckReadiness returns the first checker error, in order.
func (g ReadinessGroup) CheckReadiness(ctx context.Context) error {
	for _, c := range g {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
