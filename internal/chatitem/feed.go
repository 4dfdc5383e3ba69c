package chatitem

import (
	"sync"

	"guildhall/internal/entity"
)

// ContentSource pushes the canonical version of a message whenever it changes.
type ContentSource interface {
	SubscribeMessage(messageID string, fn func(entity.Message)) (cancel func())
}

// Feed fans canonical message versions out to the items displaying them.
type Feed struct {
	mu   sync.Mutex
	subs map[string]*listeners[entity.Message]
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]*listeners[entity.Message])}
}

func (f *Feed) SubscribeMessage(messageID string, fn func(entity.Message)) func() {
	f.mu.Lock()
	l, ok := f.subs[messageID]
	if !ok {
		l = &listeners[entity.Message]{}
		f.subs[messageID] = l
	}
	cancel := l.add(fn)
	f.mu.Unlock()

	return func() {
		cancel()
		f.mu.Lock()
		if cur, ok := f.subs[messageID]; ok && cur == l && l.len() == 0 {
			delete(f.subs, messageID)
		}
		f.mu.Unlock()
	}
}

func (f *Feed) Publish(msg entity.Message) {
	f.mu.Lock()
	l, ok := f.subs[msg.ID]
	f.mu.Unlock()

	if ok {
		l.emit(msg)
	}
}

// Subscribers counts live subscriptions over all messages.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, l := range f.subs {
		n += l.len()
	}
	return n
}
