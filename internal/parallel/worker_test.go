package parallel_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewWorkerPool(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	assert.Equal(t, 4, pool.Workers())

	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)
	cfg := config.NewConfig()
	cfg.WorkerPoolSize = 3
	config.SetGlobalConfig(cfg)

	auto := parallel.NewWorkerPool(0)
	defer auto.Close()
	assert.Equal(t, 3, auto.Workers())

	negative := parallel.NewWorkerPool(-1)
	defer negative.Close()
	assert.Equal(t, 3, negative.Workers())
}

func TestProcessIndexed(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	input := []string{"a", "b", "c", "d"}
	results, err := parallel.ProcessIndexed(pool, input, func(index int, value string) (string, error) {
		return value + string(rune('0'+index)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a0", "b1", "c2", "d3"}, results)
}

func TestProcessIndexedEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results, err := parallel.ProcessIndexed(pool, []int{}, func(_ int, x int) (int, error) {
		return x, nil
	})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestProcessIndexedLargeInput(t *testing.T) {
	pool := parallel.NewWorkerPool(8)
	defer pool.Close()

	input := make([]int, 10000)
	for i := range input {
		input[i] = i
	}

	results, err := parallel.ProcessIndexed(pool, input, func(_ int, x int) (int, error) {
		return x * 2, nil
	})
	require.NoError(t, err)
	require.Len(t, results, len(input))
	for i, r := range results {
		assert.Equal(t, i*2, r)
	}
}

func TestProcessIndexedStopsOnError(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	boom := errors.New("boom")
	var calls atomic.Int64
	input := make([]int, 1000)

	results, err := parallel.ProcessIndexed(pool, input, func(i int, _ int) (int, error) {
		calls.Add(1)
		if i == 10 {
			return 0, boom
		}
		return i, nil
	})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	assert.Less(t, calls.Load(), int64(len(input)), "remaining items should be skipped")
}

func TestProcessIndexedClosedPool(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := parallel.NewWorkerPoolWithContext(ctx, 2)
	defer pool.Close()
	cancel()

	_, err := parallel.ProcessIndexed(pool, []int{1, 2, 3}, func(_ int, x int) (int, error) {
		return x, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
