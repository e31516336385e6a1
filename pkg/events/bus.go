package events

import "sync"

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// Bus is a per-slot pub/sub event bus with support for global subscribers.
// Commands emit replies; each subscriber (console writer, log, test
// recorder) renders them for its own transport.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int][]Subscriber
	global      []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific slot's events.
func (b *Bus) Subscribe(slot int, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[slot] = append(b.subscribers[slot], sub)
}

// Unsubscribe removes a subscriber for a specific slot.
func (b *Bus) Unsubscribe(slot int, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[slot]
	for i, s := range subs {
		if s == sub {
			b.subscribers[slot] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[slot]) == 0 {
		delete(b.subscribers, slot)
	}
}

// SubscribeGlobal registers a subscriber that receives all events.
func (b *Bus) SubscribeGlobal(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, sub)
}

// Emit sends an event to the slot specified in ev.Slot and all global subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.Slot]
	globals := b.global
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
	for _, s := range globals {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// SlotSubscribers returns the number of subscribers for a slot.
func (b *Bus) SlotSubscribers(slot int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[slot])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for slot, subs := range b.subscribers {
		var active []Subscriber
		for _, s := range subs {
			if !s.Closed() {
				active = append(active, s)
			}
		}
		if len(active) == 0 {
			delete(b.subscribers, slot)
		} else {
			b.subscribers[slot] = active
		}
	}

	var activeGlobal []Subscriber
	for _, s := range b.global {
		if !s.Closed() {
			activeGlobal = append(activeGlobal, s)
		}
	}
	b.global = activeGlobal
}
