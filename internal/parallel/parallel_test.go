package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = 4

	var counter int64
	n := 1000

	err := For(n, func(_ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, int64(n), counter)
}

func TestFor_VisitsEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}

	seen := make([]int32, 50)
	err := For(len(seen), func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	}, cfg)

	require.NoError(t, err)
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	err := For(5, func(i int) error {
		order = append(order, i)
		return nil
	}, Sequential())

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	err := For(100, func(i int) error {
		if i == 42 {
			return boom
		}
		return nil
	}, cfg)

	assert.ErrorIs(t, err, boom)
}

func TestFor_SequentialStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := For(10, func(i int) error {
		calls++
		if i == 2 {
			return boom
		}
		return nil
	}, Sequential())

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}
