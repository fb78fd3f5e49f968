package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool. numWorkers goroutines draining a buffered job channel. results punya kapasitas yang sama dengan
// jobs, jadi AddJob tidak pernah block selama jumlah job <= capacity.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobs       chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, capacity int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobs:       make(chan T, capacity),
		results:    make(chan G, capacity),
	}
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	wp.wg.Add(wp.numWorkers)
	for w := 0; w < wp.numWorkers; w++ {
		go func() {
			defer wp.wg.Done()
			for job := range wp.jobs {
				wp.results <- fn(job)
			}
		}()
	}
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobs <- job
}

// Close stops accepting jobs. workers exit once the queue is drained.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobs)
}

// Wait blocks until every worker returned, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}

// RunAll runs fn over every job on numWorkers goroutines and returns the results in completion order.
func RunAll[T any, G any](numWorkers int, jobs []T, fn JobFunc[T, G]) []G {
	wp := NewWorkerPool[T, G](numWorkers, len(jobs))
	wp.Start(fn)
	for _, j := range jobs {
		wp.AddJob(j)
	}
	wp.Close()
	wp.Wait()

	out := make([]G, 0, len(jobs))
	for r := range wp.CollectResults() {
		out = append(out, r)
	}
	return out
}
