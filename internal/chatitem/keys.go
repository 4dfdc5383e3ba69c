package chatitem

const escapeKeyCode = 27

type KeyEvent struct {
	Key  string
	Code int
}

func (e KeyEvent) IsEscape() bool {
	return e.Key == "Escape" || e.Code == escapeKeyCode
}

// KeySource delivers keyboard events to subscribers until they cancel.
type KeySource interface {
	SubscribeKeys(fn func(KeyEvent)) (cancel func())
}

// KeyBus is the window-wide keyboard event source.
type KeyBus struct {
	l listeners[KeyEvent]
}

func NewKeyBus() *KeyBus {
	return &KeyBus{}
}

func (b *KeyBus) SubscribeKeys(fn func(KeyEvent)) func() {
	return b.l.add(fn)
}

func (b *KeyBus) Dispatch(ev KeyEvent) {
	b.l.emit(ev)
}

// Listeners reports how many subscriptions are alive.
func (b *KeyBus) Listeners() int {
	return b.l.len()
}
