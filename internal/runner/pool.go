package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/internal/utils"
	log "github.com/sirupsen/logrus"
)

// DriverFactory opens a driver for one scenario and returns the function
// releasing it.
type DriverFactory func(ctx context.Context) (driver.Driver, func(), error)

type job struct {
	index    int
	scenario *Scenario
}

// RunAll runs scenarios on up to parallel drivers at once and records the
// results in input order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario, parallel int, newDriver DriverFactory) (*Report, error) {
	if parallel <= 0 {
		parallel = 1
	}
	if parallel > len(scenarios) {
		parallel = len(scenarios)
	}

	queue := utils.NewQueue[job]()
	for i, s := range scenarios {
		queue.Enqueue(job{index: i, scenario: s})
	}
	queue.Close()

	results := make([]*ScenarioResult, len(scenarios))
	var wg sync.WaitGroup
	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				j, ok := queue.DequeueBlocking()
				if !ok {
					return
				}
				log.Debugf("worker %d: running scenario %s", worker, j.scenario.Name)
				results[j.index] = r.runWith(ctx, j.scenario, newDriver)
			}
		}(w)
	}
	wg.Wait()

	report := NewReport()
	for _, result := range results {
		if err := report.Add(result); err != nil {
			return report, err
		}
	}
	return report, ctx.Err()
}

func (r *Runner) runWith(ctx context.Context, scenario *Scenario, newDriver DriverFactory) *ScenarioResult {
	if err := ctx.Err(); err != nil {
		return &ScenarioResult{Name: scenario.Name, URL: scenario.URL, Err: err}
	}
	d, release, err := newDriver(ctx)
	if err != nil {
		return &ScenarioResult{Name: scenario.Name, URL: scenario.URL, Err: fmt.Errorf("failed to open driver: %w", err)}
	}
	if release != nil {
		defer release()
	}
	result, err := r.Run(ctx, d, scenario)
	if err != nil {
		log.Warn(err)
	}
	return result
}
