package timeline

// listenerList keeps callbacks in registration order. Removal keeps the
// relative order of the remaining entries.
type listenerList[F any] struct {
	entries []listenerEntry[F]
	nextID  int
}

type listenerEntry[F any] struct {
	id int
	fn F
}

// add registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (l *listenerList[F]) add(fn F) func() {
	id := l.nextID
	l.nextID++
	l.entries = append(l.entries, listenerEntry[F]{id: id, fn: fn})
	return func() {
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// snapshot returns the current callbacks so that listeners may unsubscribe
// while being notified.
func (l *listenerList[F]) snapshot() []F {
	if len(l.entries) == 0 {
		return nil
	}
	fns := make([]F, len(l.entries))
	for i, e := range l.entries {
		fns[i] = e.fn
	}
	return fns
}

func (l *listenerList[F]) len() int {
	return len(l.entries)
}
