// Fan-out/Fan-in Pattern:
// Streaming jobs: postcodes are handed out as they are grouped
// Pipeline processing: group, classify, merge
// Clean separation of stages

package fraudcheck

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

const pipelineBuffer = 1000

// ConcurrentWindowProcessor classifies postcodes through a fan-out/fan-in pipeline.
type ConcurrentWindowProcessor struct {
	Policy      WindowPolicy
	WorkerCount int
}

func NewConcurrentWindowProcessor(policy WindowPolicy, workerCount int) ConcurrentWindowProcessor {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return ConcurrentWindowProcessor{
		Policy:      policy,
		WorkerCount: workerCount,
	}
}

func (p ConcurrentWindowProcessor) Classify(ctx context.Context, threshold decimal.Decimal, applications []Application) ([]string, error) {
	jobs := p.fanOut(ctx, applications)

	results := p.process(ctx, threshold, jobs)

	flagged := p.fanIn(results)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return flagged, nil
}

func (p ConcurrentWindowProcessor) fanOut(ctx context.Context, applications []Application) <-chan PostcodeJob {
	jobs := make(chan PostcodeJob, pipelineBuffer)

	go func() {
		defer close(jobs)

		for _, job := range groupByPostcode(applications) {
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	return jobs
}

func (p ConcurrentWindowProcessor) process(ctx context.Context, threshold decimal.Decimal, jobs <-chan PostcodeJob) <-chan PostcodeResult {
	results := make(chan PostcodeResult, pipelineBuffer)
	var wg sync.WaitGroup

	for i := 0; i < p.WorkerCount; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					results <- classifyPostcode(threshold, p.Policy, job)
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p ConcurrentWindowProcessor) fanIn(results <-chan PostcodeResult) []string {
	collected := make([]PostcodeResult, 0)
	for result := range results {
		collected = append(collected, result)
	}

	return orderByBreach(collected)
}
