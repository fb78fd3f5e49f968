package concurrent

import (
	"errors"
	"time"
)

var (
	ErrScheduleTimeout = errors.New("schedule error: timed out")
)

// Pool. goroutine pool with at most size workers, spawned lazily by Schedule. used to run websocket reads without
// one goroutine per connection.
type Pool struct {
	sem  chan struct{}
	work chan func()
}

// NewPool creates a pool of size workers, spawning `spawn` of them right away. queue is the size of the task
// queue shared by the workers.
func NewPool(size, queue, spawn int) *Pool {
	if spawn <= 0 && queue > 0 {
		panic("dead queue configuration detected")
	}
	if spawn > size {
		panic("spawn > workers")
	}
	p := &Pool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
	}
	for i := 0; i < spawn; i++ {
		p.sem <- struct{}{}
		go p.worker(func() {})
	}
	return p
}

// Schedule schedules task to be executed over pool's workers. blocks until a worker or queue slot is free.
func (p *Pool) Schedule(task func()) {
	p.schedule(task, nil)
}

// ScheduleTimeout is Schedule that gives up with ErrScheduleTimeout after timeout.
func (p *Pool) ScheduleTimeout(timeout time.Duration, task func()) error {
	return p.schedule(task, time.After(timeout))
}

func (p *Pool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		go p.worker(task)
		return nil
	}
}

func (p *Pool) worker(task func()) {
	defer func() { <-p.sem }()

	task()

	for task := range p.work {
		task()
	}
}
