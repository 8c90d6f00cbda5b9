package changefeed

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name  string
		topic Topic
		event Event
		want  bool
	}{
		{name: "same table", topic: Topic{Table: TablePosts}, event: Event{Table: TablePosts, ID: "a"}, want: true},
		{name: "other table", topic: Topic{Table: TablePosts}, event: Event{Table: TableComments}, want: false},
		{name: "post filter hit", topic: Topic{Table: TableComments, PostID: "p1"}, event: Event{Table: TableComments, PostID: "p1"}, want: true},
		{name: "post filter miss", topic: Topic{Table: TableComments, PostID: "p1"}, event: Event{Table: TableComments, PostID: "p2"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.event))
		})
	}
}

func TestParseTable(t *testing.T) {
	table, ok := ParseTable("comments")
	assert.True(t, ok)
	assert.Equal(t, TableComments, table)

	_, ok = ParseTable("users")
	assert.False(t, ok)
}

func TestHub(t *testing.T) {
	hub := NewHub()

	var got []Event
	sub, err := hub.Subscribe(context.Background(), Topic{Table: TableComments, PostID: "p1"}, func(ev Event) {
		got = append(got, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Len())

	hub.Publish(Event{Table: TableComments, Op: OpInsert, ID: "c1", PostID: "p1"})
	hub.Publish(Event{Table: TableComments, Op: OpInsert, ID: "c2", PostID: "p2"})
	hub.Publish(Event{Table: TablePosts, Op: OpDelete, ID: "p1", PostID: "p1"})

	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, hub.Len())

	hub.Publish(Event{Table: TableComments, Op: OpInsert, ID: "c3", PostID: "p1"})
	assert.Len(t, got, 1)
}

func TestHubReleasesOnContextDone(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := hub.Subscribe(ctx, Topic{Table: TablePosts}, func(Event) {})
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)

	_, err = hub.Subscribe(ctx, Topic{Table: TablePosts}, func(Event) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoll(t *testing.T) {
	var ticks atomic.Int32
	sub := Poll(context.Background(), 5*time.Millisecond, func(time.Time) {
		ticks.Add(1)
	})

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	sub.Cancel()

	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())
}
