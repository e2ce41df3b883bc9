package core

import "context"

// sleepEntry is one pending deadline in the timer queue
type sleepEntry struct {
	deadline Tick
	waker    Waker
	queued   bool
	next     *sleepEntry
}

// TimerQueue multiplexes any number of sleeping tasks onto a single
// hardware alarm. Entries are kept sorted by deadline and the alarm is
// always programmed for the head.
type TimerQueue struct {
	driver *TimerDriver
	handle AlarmHandle
	head   *sleepEntry
	armed  Tick // deadline currently programmed, NoDeadline if none
}

// NewTimerQueue claims one alarm channel from the driver. It fails with
// ErrAlarmUnavailable when every channel is taken.
func NewTimerQueue(d *TimerDriver) (*TimerQueue, error) {
	h, err := d.AllocateAlarm()
	if err != nil {
		return nil, err
	}
	q := &TimerQueue{driver: d, handle: h, armed: NoDeadline}
	d.SetAlarmCallback(h, timerQueueAlarm, q)
	return q, nil
}

// Handle returns the alarm the queue runs on
func (q *TimerQueue) Handle() AlarmHandle {
	return q.handle
}

// Now returns the driver's current tick
func (q *TimerQueue) Now() Tick {
	return q.driver.Now()
}

// Sleep returns a future that resolves d ticks from now
func (q *TimerQueue) Sleep(d Tick) *SleepFuture {
	now := q.driver.Now()
	deadline := now + d
	if deadline < now {
		deadline = NoDeadline - 1
	}
	return q.SleepUntil(deadline)
}

// SleepUntil returns a future that resolves once the counter reaches deadline
func (q *TimerQueue) SleepUntil(deadline Tick) *SleepFuture {
	return &SleepFuture{queue: q, entry: sleepEntry{deadline: deadline}}
}

// Len returns the number of queued deadlines
func (q *TimerQueue) Len() int {
	state := q.driver.cs.Enter()
	defer q.driver.cs.Exit(state)

	n := 0
	for e := q.head; e != nil; e = e.next {
		n++
	}
	return n
}

// timerQueueAlarm is the alarm callback. It runs inside the critical
// section, from the alarm interrupt or from SetAlarm's immediate path.
func timerQueueAlarm(ctx any) {
	q := ctx.(*TimerQueue)
	q.armed = NoDeadline
	q.expireLocked(q.driver.Now())
	q.rearmLocked()
}

// insertLocked inserts e in sorted order by deadline
func (q *TimerQueue) insertLocked(e *sleepEntry) {
	e.queued = true
	if q.head == nil || e.deadline < q.head.deadline {
		e.next = q.head
		q.head = e
		return
	}

	current := q.head
	for current.next != nil && current.next.deadline <= e.deadline {
		current = current.next
	}

	e.next = current.next
	current.next = e
}

// removeLocked unlinks e if it is queued
func (q *TimerQueue) removeLocked(e *sleepEntry) {
	if !e.queued {
		return
	}
	e.queued = false
	e.waker = nil

	if q.head == e {
		q.head = e.next
		e.next = nil
		return
	}
	for current := q.head; current != nil; current = current.next {
		if current.next == e {
			current.next = e.next
			e.next = nil
			return
		}
	}
}

// expireLocked pops and wakes every entry due at now
func (q *TimerQueue) expireLocked(now Tick) {
	for q.head != nil && q.head.deadline <= now {
		e := q.head
		q.head = e.next
		e.next = nil // Clear to avoid stale links
		e.queued = false

		w := e.waker
		e.waker = nil
		if w != nil {
			w.Wake()
		}
	}
}

// rearmLocked programs the alarm for the head deadline. A head that is
// already due is expired on the spot and the next one tried.
func (q *TimerQueue) rearmLocked() {
	for q.head != nil {
		if q.armed == q.head.deadline {
			return
		}
		if q.driver.programLocked(q.handle, q.head.deadline) {
			q.armed = q.head.deadline
			return
		}
		q.armed = NoDeadline
		q.expireLocked(q.driver.Now())
	}
}

// SleepFuture resolves once its deadline has been reached
type SleepFuture struct {
	queue *TimerQueue
	entry sleepEntry
}

// Deadline returns the tick the future waits for
func (f *SleepFuture) Deadline() Tick {
	return f.entry.deadline
}

// Poll reports whether the deadline has passed. Otherwise it queues w to be
// woken when the alarm fires.
func (f *SleepFuture) Poll(w Waker) (bool, error) {
	q := f.queue
	state := q.driver.cs.Enter()
	defer q.driver.cs.Exit(state)

	if f.entry.deadline <= q.driver.Now() {
		q.removeLocked(&f.entry)
		return true, nil
	}

	f.entry.waker = w
	if !f.entry.queued {
		q.insertLocked(&f.entry)
	}
	if q.head == &f.entry {
		q.rearmLocked()
	}
	return false, nil
}

// Cancel drops the deadline from the queue
func (f *SleepFuture) Cancel() {
	q := f.queue
	state := q.driver.cs.Enter()
	defer q.driver.cs.Exit(state)

	q.removeLocked(&f.entry)
}

// Wait blocks the calling goroutine until the deadline or until ctx ends
func (f *SleepFuture) Wait(ctx context.Context) error {
	err := waitFor(ctx, f.Poll)
	if err != nil {
		f.Cancel()
	}
	return err
}
