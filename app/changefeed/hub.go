package changefeed

import (
	"context"
	"sync"
)

// Hub is an in-process Feed. Publishers call Publish after a successful write.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]hubSub
}

type hubSub struct {
	topic Topic
	cb    func(Event)
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]hubSub)}
}

// Subscribe registers cb for topic until ctx is done or the subscription is canceled.
func (h *Hub) Subscribe(ctx context.Context, topic Topic, cb func(Event)) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = hubSub{topic: topic, cb: cb}
	h.mu.Unlock()

	stopWatch := context.AfterFunc(ctx, func() { h.remove(id) })
	return NewSubscription(func() {
		stopWatch()
		h.remove(id)
	}), nil
}

// Publish delivers ev to every matching subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	var targets []func(Event)
	for _, s := range h.subs {
		if s.topic.Matches(ev) {
			targets = append(targets, s.cb)
		}
	}
	h.mu.RUnlock()

	for _, cb := range targets {
		cb(ev)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
