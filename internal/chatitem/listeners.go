package chatitem

import "sync"

// listeners is a set of callbacks that can be removed individually.
type listeners[T any] struct {
	mu   sync.RWMutex
	next uint64
	fns  map[uint64]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// emit calls every callback outside the lock so callbacks may unsubscribe.
func (l *listeners[T]) emit(v T) {
	l.mu.RLock()
	snapshot := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		snapshot = append(snapshot, fn)
	}
	l.mu.RUnlock()

	for _, fn := range snapshot {
		fn(v)
	}
}

func (l *listeners[T]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fns)
}
