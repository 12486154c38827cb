// Worker Pool Pattern:
// Fixed workload size: the whole batch is known upfront
// Postcodes are independent: each one's windows only see its own applications
// Confirmation order is rebuilt from the batch position of each breach

package fraudcheck

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

const defaultWorkerCount = 4

// WorkerWindowProcessor classifies postcodes concurrently with a fixed worker pool
type WorkerWindowProcessor struct {
	Policy      WindowPolicy
	WorkerCount int
}

// NewWorkerWindowProcessor creates a new worker pool processor
func NewWorkerWindowProcessor(policy WindowPolicy, workerCount int) WorkerWindowProcessor {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return WorkerWindowProcessor{
		Policy:      policy,
		WorkerCount: workerCount,
	}
}

// Classify produces the same result as WindowProcessor.Classify.
func (p WorkerWindowProcessor) Classify(ctx context.Context, threshold decimal.Decimal, applications []Application) ([]string, error) {
	// Step 1: Group applications by postcode (sequential - O(N))
	postcodeJobs := groupByPostcode(applications)

	// Step 2: Create channels for worker communication
	jobs := make(chan PostcodeJob, len(postcodeJobs))
	results := make(chan PostcodeResult, len(postcodeJobs))

	// Step 3: Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < p.WorkerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, threshold, jobs, results)
	}

	// Step 4: Send jobs to workers
	go func() {
		defer close(jobs)
		for _, job := range postcodeJobs {
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Step 5: Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Step 6: Aggregate results
	collected := make([]PostcodeResult, 0, len(postcodeJobs))
	for result := range results {
		collected = append(collected, result)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return orderByBreach(collected), nil
}

// worker classifies postcode jobs until the jobs channel is drained
func (p WorkerWindowProcessor) worker(ctx context.Context, wg *sync.WaitGroup, threshold decimal.Decimal, jobs <-chan PostcodeJob, results chan<- PostcodeResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			result := classifyPostcode(threshold, p.Policy, job)

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}
