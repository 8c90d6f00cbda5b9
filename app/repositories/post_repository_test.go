package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository(t *testing.T) {
	store := newTestStore(t)
	repo := store.Posts
	now := time.Now().UTC()

	t.Run("create and get post", func(t *testing.T) {
		post := newPost("Anna", "I love someone at college", now)
		require.NoError(t, repo.Create(post))

		got, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Nickname, got.Nickname)
		assert.Equal(t, post.Content, got.Content)
		assert.Equal(t, 24*time.Hour, got.ExpiresAt.Sub(got.CreatedAt))
	})

	t.Run("create rejects invalid post", func(t *testing.T) {
		post := newPost("", "no nickname", now)
		assert.Error(t, repo.Create(post))
	})

	t.Run("create rejects duplicate id", func(t *testing.T) {
		post := newPost("Anna", "first", now)
		require.NoError(t, repo.Create(post))
		assert.Error(t, repo.Create(post))
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := repo.GetByID("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		post := newPost("Anna", "to delete", now)
		require.NoError(t, repo.Create(post))

		require.NoError(t, repo.Delete(post.ID))
		_, err := repo.GetByID(post.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, repo.Delete(post.ID), ErrNotFound)
	})
}

func TestPostRepositoryListing(t *testing.T) {
	store := newTestStore(t)
	repo := store.Posts
	now := time.Now().UTC()

	old := newPost("Old", "expired already", now.Add(-25*time.Hour))
	older := newPost("Older", "still active", now.Add(-2*time.Hour))
	newest := newPost("New", "just posted", now.Add(-time.Minute))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(old))
	require.NoError(t, repo.Create(newest))

	t.Run("active newest first", func(t *testing.T) {
		posts, err := repo.ListActive(now)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, newest.ID, posts[0].ID)
		assert.Equal(t, older.ID, posts[1].ID)
	})

	t.Run("all includes expired", func(t *testing.T) {
		posts, err := repo.ListAll()
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, old.ID, posts[2].ID)
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		posts, err := repo.ListActive(older.ExpiresAt)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, newest.ID, posts[0].ID)
	})
}
