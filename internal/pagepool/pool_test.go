package pagepool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pagescraper/pkg/logger"
)

func pages(from, to int) []int {
	var out []int
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}

func TestSingleWorkerIsSequential(t *testing.T) {
	var mu sync.Mutex
	var order []int

	pool := NewWorkerPool(1, func(ctx context.Context, page int) int {
		mu.Lock()
		order = append(order, page)
		mu.Unlock()
		return page * 10
	}, logger.NewNopLogger())

	results := pool.Run(context.Background(), pages(1, 5))

	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
	assert.Equal(t, []int{10, 20, 30, 40, 50}, results)
}

func TestResultsKeepPageOrderWithManyWorkers(t *testing.T) {
	pool := NewWorkerPool(4, func(ctx context.Context, page int) int {
		// Later pages finish first
		time.Sleep(time.Duration(10-page) * time.Millisecond)
		return page
	}, logger.NewNopLogger())

	results := pool.Run(context.Background(), pages(1, 8))

	assert.Equal(t, pages(1, 8), results)
}

func TestWorkersRunConcurrently(t *testing.T) {
	var active, peak int32

	pool := NewWorkerPool(3, func(ctx context.Context, page int) struct{} {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return struct{}{}
	}, logger.NewNopLogger())

	pool.Run(context.Background(), pages(1, 6))

	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestCancelledPagesStillProduceResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewWorkerPool(1, func(ctx context.Context, page int) string {
		if page == 2 {
			cancel()
		}
		if ctx.Err() != nil && page > 2 {
			return "canceled"
		}
		return "done"
	}, logger.NewNopLogger())

	results := pool.Run(ctx, pages(1, 4))

	require.Len(t, results, 4)
	assert.Equal(t, []string{"done", "done", "canceled", "canceled"}, results)
}

func TestZeroWorkersTreatedAsOne(t *testing.T) {
	pool := NewWorkerPool(0, func(ctx context.Context, page int) int { return page }, nil)
	assert.Equal(t, 1, pool.numWorkers)
	assert.Equal(t, []int{7}, pool.Run(context.Background(), []int{7}))
}

func TestEmptyInput(t *testing.T) {
	pool := NewWorkerPool(2, func(ctx context.Context, page int) int { return page }, logger.NewNopLogger())
	assert.Empty(t, pool.Run(context.Background(), nil))
}
