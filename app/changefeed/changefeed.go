// Package changefeed defines the subscription capability views use to learn
// about inserts and deletes without depending on a concrete store.
package changefeed

import (
	"context"
	"sync"
	"time"
)

// Table names the entity a change belongs to.
type Table string

const (
	TablePosts    Table = "posts"
	TableComments Table = "comments"
)

// ParseTable validates a table name coming from a request.
func ParseTable(s string) (Table, bool) {
	switch Table(s) {
	case TablePosts, TableComments:
		return Table(s), true
	}
	return "", false
}

// Op is the kind of change.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one changed row.
type Event struct {
	Table  Table     `json:"table"`
	Op     Op        `json:"op"`
	ID     string    `json:"id"`
	PostID string    `json:"post_id,omitempty"`
	At     time.Time `json:"at"`
}

// Topic selects the events a subscriber receives. An empty PostID matches
// every row of Table.
type Topic struct {
	Table  Table
	PostID string
}

// Matches reports whether ev belongs to the topic.
func (t Topic) Matches(ev Event) bool {
	if ev.Table != t.Table {
		return false
	}
	return t.PostID == "" || ev.PostID == t.PostID
}

// Feed registers callbacks for changes. Callbacks run on a goroutine owned by
// the feed and must not block for long.
type Feed interface {
	Subscribe(ctx context.Context, topic Topic, cb func(Event)) (*Subscription, error)
}

// Subscription is a cancelable registration. Cancel is idempotent and returns
// once no further callbacks will run.
type Subscription struct {
	once sync.Once
	stop func()
}

// NewSubscription wraps the function that tears a registration down.
func NewSubscription(stop func()) *Subscription {
	return &Subscription{stop: stop}
}

// Cancel releases the subscription.
func (s *Subscription) Cancel() {
	s.once.Do(s.stop)
}

// Poll calls fn every interval until ctx is done or the returned
// subscription is canceled.
func Poll(ctx context.Context, interval time.Duration, fn func(time.Time)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}()

	return NewSubscription(func() {
		cancel()
		<-done
	})
}
