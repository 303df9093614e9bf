package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tomb "gopkg.in/tomb.v2"
)

func TestWorkerPoolRunsEnqueuedTasks(t *testing.T) {
	pool := NewWorkerPool(2)
	var processed atomic.Int32

	tb := &tomb.Tomb{}
	tb.Go(func() error {
		pool.Setup(tb, func(_ *tomb.Tomb, task any) error {
			n := task.(int)
			processed.Add(int32(n))
			return nil
		})
		return nil
	})

	pool.AddTask(1)
	pool.AddTask(2)
	pool.AddTask(3)

	assert.Eventually(t, func() bool {
		return processed.Load() == 6
	}, time.Second, 5*time.Millisecond)

	tb.Kill(nil)
}
