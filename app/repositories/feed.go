package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"svyasa/app/changefeed"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	probeKeyPrefix = "feed:probe:"
	probeInterval  = 10 * time.Millisecond
	probeAttempts  = 200
)

// BadgerFeed implements changefeed.Feed on top of Badger's key subscriptions.
// A delete shows up as an entry with an empty value.
type BadgerFeed struct {
	db  *badger.DB
	log *zap.Logger
}

// NewBadgerFeed creates a feed over db.
func NewBadgerFeed(db *badger.DB, log *zap.Logger) *BadgerFeed {
	if log == nil {
		log = zap.NewNop()
	}
	return &BadgerFeed{db: db, log: log}
}

// Subscribe starts delivering events for topic. It returns once Badger has
// registered the subscriber, so writes made afterwards are never missed.
func (f *BadgerFeed) Subscribe(ctx context.Context, topic changefeed.Topic, cb func(changefeed.Event)) (*changefeed.Subscription, error) {
	prefix, err := topicPrefix(topic)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	probe := []byte(probeKeyPrefix + uuid.NewString())
	ready := make(chan struct{})
	var readyOnce sync.Once
	done := make(chan struct{})

	matches := []pb.Match{{Prefix: prefix}, {Prefix: probe}}
	go func() {
		defer close(done)
		err := f.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				if strings.HasPrefix(string(kv.Key), probeKeyPrefix) {
					readyOnce.Do(func() { close(ready) })
					continue
				}
				ev, ok := eventFromKV(kv)
				if ok && topic.Matches(ev) {
					cb(ev)
				}
			}
			return nil
		}, matches)
		if err != nil && !errors.Is(err, context.Canceled) {
			f.log.Warn("change feed subscription ended", zap.String("table", string(topic.Table)), zap.Error(err))
		}
	}()

	sub := changefeed.NewSubscription(func() {
		cancel()
		<-done
	})

	if err := f.awaitReady(ctx, probe, ready); err != nil {
		sub.Cancel()
		return nil, err
	}
	return sub, nil
}

// awaitReady writes the probe key until the subscriber sees it.
func (f *BadgerFeed) awaitReady(ctx context.Context, probe []byte, ready <-chan struct{}) error {
	for i := 0; i < probeAttempts; i++ {
		err := f.db.Update(func(txn *badger.Txn) error {
			return txn.SetEntry(badger.NewEntry(probe, []byte{1}).WithTTL(time.Minute))
		})
		if err != nil {
			return fmt.Errorf("failed to probe change feed: %w", err)
		}
		select {
		case <-ready:
			return f.db.Update(func(txn *badger.Txn) error {
				return txn.Delete(probe)
			})
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(probeInterval):
		}
	}
	return errors.New("change feed subscriber did not become ready")
}

func topicPrefix(topic changefeed.Topic) ([]byte, error) {
	switch topic.Table {
	case changefeed.TablePosts:
		if topic.PostID != "" {
			return postKey(topic.PostID), nil
		}
		return []byte(PostKeyPrefix), nil
	case changefeed.TableComments:
		if topic.PostID != "" {
			return commentPrefix(topic.PostID), nil
		}
		return []byte(CommentKeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown table %q", topic.Table)
}

func eventFromKV(kv *pb.KV) (changefeed.Event, bool) {
	key := string(kv.Key)
	op := changefeed.OpInsert
	if len(kv.Value) == 0 {
		op = changefeed.OpDelete
	}
	ev := changefeed.Event{Op: op, At: time.Now().UTC()}

	if id, ok := strings.CutPrefix(key, PostKeyPrefix); ok {
		ev.Table = changefeed.TablePosts
		ev.ID = id
		ev.PostID = id
		return ev, true
	}
	if postID, id, ok := parseCommentKey(key); ok {
		ev.Table = changefeed.TableComments
		ev.ID = id
		ev.PostID = postID
		return ev, true
	}
	return ev, false
}
