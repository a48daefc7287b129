// Where: cli/internal/usecase/deploy/deployer.go
// What: Reconcile a set of functions, optionally in parallel.
// Why: Keep fan-out and ordering of outcomes out of the command layer.
package deploy

import (
	"context"

	"github.com/poruru/bsam-cli/internal/domain/function"
	"golang.org/x/sync/errgroup"
)

// Deployer reconciles many functions.
type Deployer struct {
	Reconciler Reconciler
	// Parallel bounds concurrent reconciles; values below 1 mean sequential.
	Parallel int
	// Report is called once per successful outcome, possibly concurrently.
	Report func(Outcome)
}

// Deploy reconciles fns and returns outcomes in input order. The first
// failure cancels functions that have not started yet.
func (d Deployer) Deploy(ctx context.Context, fns []function.Definition) ([]Outcome, error) {
	limit := d.Parallel
	if limit < 1 {
		limit = 1
	}
	results := make([]*Outcome, len(fns))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, fn := range fns {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcome, err := d.Reconciler.Reconcile(groupCtx, fn)
			if err != nil {
				return err
			}
			results[i] = &outcome
			if d.Report != nil {
				d.Report(outcome)
			}
			return nil
		})
	}
	err := group.Wait()

	outcomes := make([]Outcome, 0, len(fns))
	for _, outcome := range results {
		if outcome != nil {
			outcomes = append(outcomes, *outcome)
		}
	}
	return outcomes, err
}
