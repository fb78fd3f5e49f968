package concurrent

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	wp := NewWorkerPool[int, int](4, 100)
	wp.Start(func(job int) int { return job * job })
	for i := 0; i < 100; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Wait()

	sum := 0
	for r := range wp.CollectResults() {
		sum += r
	}
	assert.Equal(t, 328350, sum)
}

func TestRunAll(t *testing.T) {
	jobs := []int{1, 2, 3, 4, 5}
	got := RunAll(3, jobs, func(job int) int { return job * 10 })
	assert.ElementsMatch(t, []int{10, 20, 30, 40, 50}, got)

	assert.Empty(t, RunAll(0, []int{}, func(job int) int { return job }))
}

func TestPoolSchedule(t *testing.T) {
	p := NewPool(2, 1, 1)
	var wg sync.WaitGroup
	var done int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		p.Schedule(func() {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
		})
	}
	wg.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&done))
}

func TestPoolScheduleTimeout(t *testing.T) {
	p := NewPool(1, 0, 1)
	block := make(chan struct{})
	started := make(chan struct{})
	// the only worker is busy and there is no queue
	assert.NoError(t, p.ScheduleTimeout(time.Second, func() {
		close(started)
		<-block
	}))
	<-started
	err := p.ScheduleTimeout(10*time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrScheduleTimeout)
	close(block)
}
