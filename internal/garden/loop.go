package garden

import "time"

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameScheduler hands out per-refresh callbacks.
type FrameScheduler interface {
	RequestFrame(cb func(now time.Duration)) FrameID
	CancelFrame(id FrameID)
}

// FrameQueue is a FrameScheduler driven by explicit Flush calls, one per
// display refresh. Callbacks requested while flushing run on the next Flush.
type FrameQueue struct {
	next    FrameID
	pending []queuedFrame
}

type queuedFrame struct {
	id FrameID
	cb func(now time.Duration)
}

func (q *FrameQueue) RequestFrame(cb func(now time.Duration)) FrameID {
	q.next++
	q.pending = append(q.pending, queuedFrame{id: q.next, cb: cb})
	return q.next
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	for i, f := range q.pending {
		if f.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending reports how many callbacks wait for the next Flush.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// Flush runs every callback queued before the call and returns how many ran.
func (q *FrameQueue) Flush(now time.Duration) int {
	batch := q.pending
	q.pending = nil
	for _, f := range batch {
		f.cb(now)
	}
	return len(batch)
}

// Loop renders once per scheduled frame until stopped.
type Loop struct {
	sched  FrameScheduler
	render func(now time.Duration)
	id     FrameID
}

func NewLoop(sched FrameScheduler, render func(now time.Duration)) *Loop {
	return &Loop{sched: sched, render: render}
}

// Start cancels any pending frame and schedules a fresh one.
func (l *Loop) Start() {
	if l.id != 0 {
		l.sched.CancelFrame(l.id)
	}
	l.id = l.sched.RequestFrame(l.frame)
}

// Stop cancels the pending frame. A frame already rendering completes.
func (l *Loop) Stop() {
	if l.id == 0 {
		return
	}
	l.sched.CancelFrame(l.id)
	l.id = 0
}

func (l *Loop) Running() bool {
	return l.id != 0
}

func (l *Loop) frame(now time.Duration) {
	cur := l.id
	l.render(now)
	// render stopped or restarted the loop
	if l.id != cur {
		return
	}
	l.id = l.sched.RequestFrame(l.frame)
}
