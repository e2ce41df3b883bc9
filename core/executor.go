package core

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Task is a cooperative task. Poll advances it until it would have to wait,
// arranging for w to be woken when it can make progress. It returns true
// once the task has finished.
type Task interface {
	Poll(w Waker) (bool, error)
}

// TaskFunc adapts a function to the Task interface
type TaskFunc func(w Waker) (bool, error)

// Poll calls f
func (f TaskFunc) Poll(w Waker) (bool, error) { return f(w) }

// taskEntry is a spawned task and its waker
type taskEntry struct {
	task  Task
	woken atomic.Bool
}

// Wake marks the task ready. Safe from interrupt context.
func (t *taskEntry) Wake() { t.woken.Store(true) }

// Executor polls spawned tasks whenever their waker has fired. Tasks run
// one at a time, in spawn order. Spawn and RunOnce belong to the
// foreground loop; only Wake may be called from interrupt handlers.
type Executor struct {
	tasks   []*taskEntry
	onError func(error)
}

// NewExecutor creates an empty executor
func NewExecutor() *Executor {
	return &Executor{
		onError: func(err error) {
			debugPrintln("[EXEC] task failed: " + err.Error())
		},
	}
}

// SetErrorHandler sets the hook called when a task returns an error. The
// failing task is dropped.
func (e *Executor) SetErrorHandler(fn func(error)) {
	if fn != nil {
		e.onError = fn
	}
}

// Spawn adds a task. It is polled on the next RunOnce.
func (e *Executor) Spawn(t Task) {
	entry := &taskEntry{task: t}
	entry.woken.Store(true)
	e.tasks = append(e.tasks, entry)
}

// Pending returns the number of unfinished tasks
func (e *Executor) Pending() int {
	return len(e.tasks)
}

// Ready reports whether any task has been woken since its last poll. Idle
// loops check it with interrupts masked before sleeping.
func (e *Executor) Ready() bool {
	for _, t := range e.tasks {
		if t.woken.Load() {
			return true
		}
	}
	return false
}

// RunOnce polls every woken task once and returns how many were polled
func (e *Executor) RunOnce() int {
	polled := 0
	live := e.tasks[:0]
	for _, t := range e.tasks {
		if !t.woken.Swap(false) {
			live = append(live, t)
			continue
		}
		polled++

		done, err := t.task.Poll(t)
		if err != nil {
			e.onError(err)
			continue
		}
		if !done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(e.tasks); i++ {
		e.tasks[i] = nil
	}
	e.tasks = live
	return polled
}

// Run polls tasks until all have finished or ctx ends
func (e *Executor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.RunOnce() == 0 {
			if len(e.tasks) == 0 {
				return nil
			}
			runtime.Gosched()
		}
	}
}

// Every returns a task that calls fn every period ticks, forever. Deadlines
// follow a fixed schedule from the first poll, so a late poll does not
// shift later runs.
func Every(q *TimerQueue, period Tick, fn func()) Task {
	var sleep *SleepFuture
	var next Tick
	started := false
	return TaskFunc(func(w Waker) (bool, error) {
		for {
			if sleep == nil {
				if !started {
					next = q.Now()
					started = true
				}
				fn()
				next += period
				sleep = q.SleepUntil(next)
			}
			done, err := sleep.Poll(w)
			if err != nil || !done {
				return false, err
			}
			sleep = nil
		}
	})
}

// OnPinEvent returns a task that waits for event on pin and calls fn each
// time it is seen, forever. Pin errors end the task.
func OnPinEvent(p *PinWaiter, pin GPIOPin, event PinEvent, fn func()) Task {
	var fut *PinFuture
	return TaskFunc(func(w Waker) (bool, error) {
		for {
			if fut == nil {
				f, err := p.BeginWait(pin, event)
				if err != nil {
					return false, err
				}
				fut = f
			}
			done, err := fut.Poll(w)
			if err != nil || !done {
				return false, err
			}
			fut = nil
			fn()
		}
	})
}
