package garden

// Subscription is a registered listener. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Surface is the host's drawing area and the events scoped to it.
type Surface interface {
	// Context2D acquires the drawing canvas.
	Context2D() (Canvas, error)
	// Rect is the current logical size of the surface.
	Rect() (width, height float64)
	// DevicePixelRatio is the raw ratio reported by the display.
	DevicePixelRatio() float64

	OnResize(fn func()) Subscription
	OnPointerMove(fn func(x, y float64)) Subscription
	OnPointerLeave(fn func()) Subscription
}

// Listeners is a list of callbacks with per-entry unsubscribe, for hosts
// implementing Surface or MotionQuery.
type Listeners[F any] struct {
	next    int
	entries []listener[F]
}

type listener[F any] struct {
	id int
	fn F
}

// Add registers fn and returns its subscription.
func (l *Listeners[F]) Add(fn F) Subscription {
	l.next++
	id := l.next
	l.entries = append(l.entries, listener[F]{id: id, fn: fn})
	return unsubscribeFunc(func() { l.remove(id) })
}

func (l *Listeners[F]) remove(id int) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// Each calls visit for a snapshot of the current listeners, so callbacks may
// unsubscribe while being notified.
func (l *Listeners[F]) Each(visit func(F)) {
	snapshot := make([]F, len(l.entries))
	for i, e := range l.entries {
		snapshot[i] = e.fn
	}
	for _, fn := range snapshot {
		visit(fn)
	}
}

// Len is the number of live listeners.
func (l *Listeners[F]) Len() int {
	return len(l.entries)
}

type unsubscribeFunc func()

func (f unsubscribeFunc) Unsubscribe() { f() }
