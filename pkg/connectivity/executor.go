package connectivity

import "sync"

// Executor runs submitted tasks, possibly concurrently. The engine submits
// one task per dirty item during a search pass and waits for all of them.
type Executor interface {
	Go(task func())
}

// Pool is an Executor backed by a fixed number of worker goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPool starts a pool with the given number of workers (at least one).
func NewPool(workers int) *Pool {
	p := &Pool{tasks: make(chan func())}
	workers = max(1, workers)
	p.wg.Add(workers)
	for range workers {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Go hands task to the next free worker, blocking until one is free.
// Calling Go after Close panics.
func (p *Pool) Go(task func()) {
	p.tasks <- task
}

// Close stops the workers once queued tasks have run.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.tasks) })
	p.wg.Wait()
}

// Inline is an Executor that runs each task on the calling goroutine. It
// makes search passes single-threaded and deterministic.
type Inline struct{}

// Go runs task immediately.
func (Inline) Go(task func()) {
	task()
}
