package model

import (
	"context"
	"errors"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// RestartSummary gathers independent annealing runs started from consecutive seeds
type RestartSummary struct {
	Best       Result
	Results    []Result // Indexed by restart; run i used seed params.Seed+i
	Converged  int
	MeanCost   float64 // Over the runs that were not cancelled
	StdDevCost float64
}

// RunRestarts races restarts annealing runs. Every run owns its own state; the
// first run that converges cancels the rest.
func RunRestarts(ctx context.Context, params AnnealingParameters, modelInput ModelInput, restarts int, opts ...Option) (RestartSummary, error) {
	return runMany(ctx, params, modelInput, restarts, true, opts)
}

// RunIndependent performs runs annealing runs to completion, e.g. to benchmark parameters
func RunIndependent(ctx context.Context, params AnnealingParameters, modelInput ModelInput, runs int, opts ...Option) (RestartSummary, error) {
	return runMany(ctx, params, modelInput, runs, false, opts)
}

func runMany(ctx context.Context, params AnnealingParameters, modelInput ModelInput, restarts int, race bool, opts []Option) (RestartSummary, error) {
	restarts = max(restarts, 1)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, restarts)
	group := errgroup.Group{}
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i := range restarts {
		group.Go(func() error {
			runParams := params
			runParams.Seed = params.Seed + uint64(i)

			result, err := NewAnnealingScheduler(runParams, opts...).Build(runCtx, modelInput)
			results[i] = result
			if err != nil {
				// Runs cancelled because another run converged are not failures
				if errors.Is(err, context.Canceled) && ctx.Err() == nil {
					return nil
				}
				return err
			}
			if race && result.Outcome == Converged {
				cancel()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return RestartSummary{Results: results}, err
	}

	return summarize(results), nil
}

func summarize(results []Result) RestartSummary {
	summary := RestartSummary{Results: results}

	finished := lo.Filter(results, func(result Result, _ int) bool {
		return result.State != nil && result.Reason != ReasonCancelled
	})
	summary.Converged = lo.CountBy(finished, func(result Result) bool { return result.Outcome == Converged })

	if len(finished) > 0 {
		summary.Best = lo.MinBy(finished, func(a, b Result) bool {
			if (a.Outcome == Converged) != (b.Outcome == Converged) {
				return a.Outcome == Converged
			}
			return a.Cost < b.Cost
		})
		costs := lo.Map(finished, func(result Result, _ int) float64 { return float64(result.Cost) })
		summary.MeanCost = stat.Mean(costs, nil)
		if len(costs) > 1 {
			summary.StdDevCost = stat.StdDev(costs, nil)
		}
	}
	return summary
}
