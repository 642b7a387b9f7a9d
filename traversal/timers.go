package traversal

import "sort"

// TimerHandle names a pending timer. Owner keeps handles from different
// controllers apart when they share a queue.
type TimerHandle struct {
	Owner any
	Name  string
}

// Timers is the deferred-execution service the controller depends on.
type Timers interface {
	SetTimer(h TimerHandle, delay float64, fn func())
	ClearTimer(h TimerHandle)
	IsTimerActive(h TimerHandle) bool
}

type scheduledTask struct {
	handle TimerHandle
	due    float64
	seq    uint64
	fn     func()
	valid  func() bool
}

// TaskQueue runs scheduled tasks from the simulation tick instead of a
// separate timer thread. It is not safe for concurrent use.
type TaskQueue struct {
	now   float64
	seq   uint64
	tasks map[TimerHandle]*scheduledTask
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{tasks: map[TimerHandle]*scheduledTask{}}
}

// Now returns the queue's simulated time in seconds.
func (q *TaskQueue) Now() float64 {
	if q == nil {
		return 0
	}
	return q.now
}

// SetTimer replaces any pending task under h.
func (q *TaskQueue) SetTimer(h TimerHandle, delay float64, fn func()) {
	q.Schedule(h, delay, fn, nil)
}

// Schedule is SetTimer with an owner check: when valid returns false at
// expiry the callback is dropped.
func (q *TaskQueue) Schedule(h TimerHandle, delay float64, fn func(), valid func() bool) {
	if q == nil {
		return
	}
	if q.tasks == nil {
		q.tasks = map[TimerHandle]*scheduledTask{}
	}
	if delay < 0 {
		delay = 0
	}
	q.seq++
	q.tasks[h] = &scheduledTask{handle: h, due: q.now + delay, seq: q.seq, fn: fn, valid: valid}
}

func (q *TaskQueue) ClearTimer(h TimerHandle) {
	if q == nil {
		return
	}
	delete(q.tasks, h)
}

func (q *TaskQueue) IsTimerActive(h TimerHandle) bool {
	if q == nil {
		return false
	}
	_, ok := q.tasks[h]
	return ok
}

// Remaining returns the seconds left on h, or 0 when it is not pending.
func (q *TaskQueue) Remaining(h TimerHandle) float64 {
	if q == nil {
		return 0
	}
	t, ok := q.tasks[h]
	if !ok {
		return 0
	}
	return t.due - q.now
}

// Advance moves time forward and fires every task that came due, oldest
// first. Tasks are removed before their callback runs so a callback may
// re-arm its own handle.
func (q *TaskQueue) Advance(dt float64) {
	if q == nil || dt < 0 {
		return
	}
	q.now += dt
	if len(q.tasks) == 0 {
		return
	}
	due := make([]*scheduledTask, 0, len(q.tasks))
	for _, t := range q.tasks {
		if t.due <= q.now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if cur, ok := q.tasks[t.handle]; !ok || cur != t {
			continue
		}
		delete(q.tasks, t.handle)
		if t.valid != nil && !t.valid() {
			continue
		}
		if t.fn != nil {
			t.fn()
		}
	}
}
