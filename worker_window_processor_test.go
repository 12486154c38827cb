package fraudcheck

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerWindowProcessor_DefaultWorkers(t *testing.T) {
	assert.Equal(t, defaultWorkerCount, NewWorkerWindowProcessor(WindowElapsed, 0).WorkerCount)
	assert.Equal(t, defaultWorkerCount, NewWorkerWindowProcessor(WindowElapsed, -3).WorkerCount)
	assert.Equal(t, 2, NewWorkerWindowProcessor(WindowElapsed, 2).WorkerCount)
}

func TestWorkerWindowProcessor_EmptyBatch(t *testing.T) {
	flagged, err := NewWorkerWindowProcessor(WindowElapsed, 3).Classify(context.Background(), decimal.NewFromInt(10), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{}, flagged)
}

func BenchmarkWorkerWindowProcessor_Classify(b *testing.B) {
	processor := NewWorkerWindowProcessor(WindowElapsed, 4) // Use 4 workers
	applications := benchmarkBatch(1000, 50)
	threshold := decimal.NewFromInt(2500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = processor.Classify(context.Background(), threshold, applications)
	}
}

func BenchmarkWorkerWindowProcessor_Classify_DifferentWorkerCounts(b *testing.B) {
	applications := benchmarkBatch(1000, 50)
	threshold := decimal.NewFromInt(2500)

	workerCounts := []int{1, 2, 4, 8}
	for _, workerCount := range workerCounts {
		b.Run(fmt.Sprintf("Workers_%d", workerCount), func(b *testing.B) {
			processor := NewWorkerWindowProcessor(WindowElapsed, workerCount)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = processor.Classify(context.Background(), threshold, applications)
			}
		})
	}
}
