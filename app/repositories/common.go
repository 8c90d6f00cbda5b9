package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"svyasa/app/models"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	SessionKeyPrefix = "session:"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrClosed   = errors.New("store is closed")
)

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

// commentKey orders a post's comments by creation time under one prefix.
func commentKey(c *models.Comment) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", CommentKeyPrefix, c.PostID, c.CreatedAt.UnixNano(), c.ID))
}

func commentPrefix(postID string) []byte {
	return []byte(CommentKeyPrefix + postID + ":")
}

func sessionKey(id string) []byte {
	return []byte(SessionKeyPrefix + id)
}

// parseCommentKey splits comment:<postID>:<nanos>:<id>.
func parseCommentKey(key string) (postID, id string, ok bool) {
	rest, found := strings.CutPrefix(key, CommentKeyPrefix)
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[0], parts[2], true
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// sortNewestFirst orders posts by creation time descending, ID breaking ties.
func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// filterActive keeps posts whose expiry is strictly after now.
func filterActive(posts []*models.Post, now time.Time) []*models.Post {
	active := posts[:0]
	for _, p := range posts {
		if p.IsActive(now) {
			active = append(active, p)
		}
	}
	return active
}
