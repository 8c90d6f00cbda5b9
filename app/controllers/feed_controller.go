package controllers

import (
	"context"
	"net/http"
	"time"

	"svyasa/app/changefeed"
	"svyasa/app/logger"
	"svyasa/app/metrics"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// Feed message types.
const (
	MessageSubscribed = "subscribed"
	MessageChange     = "change"
	MessageRefresh    = "refresh"
)

// DefaultPollInterval is used when no refresh interval is configured.
const DefaultPollInterval = 60 * time.Second

const (
	feedBuffer = 32
	writeWait  = 10 * time.Second
)

// FeedMessage is one frame on the feed websocket.
type FeedMessage struct {
	Type  string            `json:"type"`
	Event *changefeed.Event `json:"event,omitempty"`
	At    time.Time         `json:"at"`
}

// FeedController streams change events over a websocket.
type FeedController struct {
	feed         changefeed.Feed
	pollInterval time.Duration
}

// NewFeedController creates a new FeedController. Every pollInterval a
// refresh frame is sent so clients reload even if an event was missed.
func NewFeedController(feed changefeed.Feed, pollInterval time.Duration) *FeedController {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &FeedController{feed: feed, pollInterval: pollInterval}
}

// Subscribe upgrades the request and streams events for
// ?table=posts|comments[&post_id=]. The subscription and the refresh ticker
// are released when the socket closes.
func (fc *FeedController) Subscribe(w http.ResponseWriter, r *http.Request) {
	table, ok := changefeed.ParseTable(r.URL.Query().Get("table"))
	if !ok {
		sendError(w, http.StatusBadRequest, "table must be posts or comments")
		return
	}
	topic := changefeed.Topic{Table: table, PostID: r.URL.Query().Get("post_id")}
	log := logger.FromContext(r.Context()).With(
		zap.String("table", string(topic.Table)),
		zap.String("post_id", topic.PostID),
	)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// The client only listens; CloseRead cancels ctx when it goes away.
	ctx := conn.CloseRead(r.Context())

	frames := make(chan FeedMessage, feedBuffer)
	push := func(msg FeedMessage) {
		select {
		case frames <- msg:
		default:
			log.Debug("Dropping feed frame for slow client", zap.String("type", msg.Type))
		}
	}

	sub, err := fc.feed.Subscribe(ctx, topic, func(ev changefeed.Event) {
		push(FeedMessage{Type: MessageChange, Event: &ev, At: ev.At})
	})
	if err != nil {
		log.Error("Feed subscription failed", zap.Error(err))
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer sub.Cancel()

	ticker := changefeed.Poll(ctx, fc.pollInterval, func(t time.Time) {
		push(FeedMessage{Type: MessageRefresh, At: t.UTC()})
	})
	defer ticker.Cancel()

	metrics.FeedSubscriptions.Inc()
	defer metrics.FeedSubscriptions.Dec()

	if err := fc.write(ctx, conn, FeedMessage{Type: MessageSubscribed, At: time.Now().UTC()}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "closing")
			return
		case msg := <-frames:
			if err := fc.write(ctx, conn, msg); err != nil {
				log.Debug("Feed write failed", zap.Error(err))
				return
			}
		}
	}
}

func (fc *FeedController) write(ctx context.Context, conn *websocket.Conn, msg FeedMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
