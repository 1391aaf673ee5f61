package garden

// MotionQuery reports the reduced-motion preference and its changes.
type MotionQuery interface {
	ReducedMotion() bool
	OnChange(fn func(reduced bool)) Subscription
}

// MotionPreference is a settable MotionQuery. The zero value prefers motion.
type MotionPreference struct {
	reduced   bool
	listeners Listeners[func(bool)]
}

func NewMotionPreference(reduced bool) *MotionPreference {
	return &MotionPreference{reduced: reduced}
}

func (m *MotionPreference) ReducedMotion() bool {
	return m.reduced
}

func (m *MotionPreference) OnChange(fn func(reduced bool)) Subscription {
	return m.listeners.Add(fn)
}

// Set updates the preference and notifies listeners when it changes.
func (m *MotionPreference) Set(reduced bool) {
	if m.reduced == reduced {
		return
	}
	m.reduced = reduced
	m.listeners.Each(func(fn func(bool)) { fn(reduced) })
}

// Listeners reports how many change listeners are registered.
func (m *MotionPreference) Listeners() int {
	return m.listeners.Len()
}
