package events

// Bus is a synchronous publish/subscribe dispatcher. It performs no locking:
// like the model that owns it, it assumes a single logical caller at a time.
type Bus struct {
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every subsequently published event and returns
// a cancel function. Subscribing during delivery takes effect from the next
// Publish call, not the current one.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers each event, in order, to every subscriber registered at
// the time of the call.
func (b *Bus) Publish(evts ...Event) {
	if len(b.subs) == 0 {
		return
	}
	current := make([]subscriber, len(b.subs))
	copy(current, b.subs)
	for _, e := range evts {
		for _, s := range current {
			s.fn(e)
		}
	}
}
