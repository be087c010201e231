package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/trkhoanh/quant-backtest/internal/monitoring"
	"github.com/trkhoanh/quant-backtest/internal/strategy"
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// Job is one backtest task for the runner. The factory is invoked on a
// worker goroutine so every run owns a freshly constructed strategy;
// strategy instances must never be shared across concurrent runs.
type Job struct {
	ID              string
	Bars            []types.OHLCV
	StrategyFactory func() (strategy.Strategy, error)
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	ID       string
	Result   *Result
	Duration time.Duration
	Err      error
}

// Runner executes independent backtests in parallel. Safety comes from
// ownership, not locking: each job gets its own strategy instance and
// the engine keeps no per-run state.
type Runner struct {
	engine  *Engine
	workers int
}

// NewRunner creates a parallel runner around an engine. A non-positive
// worker count defaults to the number of CPUs. The engine must not be
// configured with a risk manager: a PortfolioManager belongs to a
// single portfolio and would be shared across jobs.
func NewRunner(engine *Engine, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{engine: engine, workers: workers}
}

// RunAll executes every job and returns results in job order. The
// context cancels jobs that have not started yet; running jobs finish
// their current backtest.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) []JobResult {
	results := make([]JobResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = r.runJob(jobs[i])
			}
		}()
	}

	for i := range jobs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			results[i] = JobResult{ID: jobs[i].ID, Err: ctx.Err()}
		}
	}
	close(indexes)
	wg.Wait()

	return results
}

func (r *Runner) runJob(job Job) JobResult {
	start := time.Now()

	strat, err := job.StrategyFactory()
	if err != nil {
		return JobResult{ID: job.ID, Err: fmt.Errorf("job %s: %w", job.ID, err)}
	}

	result := r.engine.Run(strat, job.Bars)
	elapsed := time.Since(start)

	monitoring.RecordRun(result.StrategyName, result.FinalCapital, elapsed.Seconds())
	monitoring.RecordDroppedSignals(result.StrategyName, result.DroppedSignals)
	for _, t := range result.Trades {
		monitoring.RecordTrade(result.StrategyName, string(t.Kind))
	}

	return JobResult{ID: job.ID, Result: result, Duration: elapsed}
}
