package mock

import (
	"sort"
	"sync"
	"time"

	"svyasa/app/changefeed"
	"svyasa/app/models"
	"svyasa/app/repositories"
)

type PostRepository struct {
	posts map[string]*models.Post
	hub   *changefeed.Hub
	mutex sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// CreateCalls counts Create invocations.
	CreateCalls int
}

type CommentRepository struct {
	comments map[string][]*models.Comment
	hub      *changefeed.Hub
	mutex    sync.RWMutex

	Err         error
	CreateCalls int
}

type SessionRepository struct {
	sessions map[string]*models.Session
	mutex    sync.RWMutex
}

// NewPostRepository creates an in-memory post store. hub may be nil.
func NewPostRepository(hub *changefeed.Hub) *PostRepository {
	return &PostRepository{
		posts: make(map[string]*models.Post),
		hub:   hub,
	}
}

// NewCommentRepository creates an in-memory comment store. hub may be nil.
func NewCommentRepository(hub *changefeed.Hub) *CommentRepository {
	return &CommentRepository{
		comments: make(map[string][]*models.Comment),
		hub:      hub,
	}
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*models.Session)}
}

func publish(hub *changefeed.Hub, ev changefeed.Event) {
	if hub != nil {
		ev.At = time.Now().UTC()
		hub.Publish(ev)
	}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	m.CreateCalls++
	if m.Err != nil {
		m.mutex.Unlock()
		return m.Err
	}
	if err := post.Validate(); err != nil {
		m.mutex.Unlock()
		return err
	}
	stored := *post
	m.posts[post.ID] = &stored
	m.mutex.Unlock()

	publish(m.hub, changefeed.Event{Table: changefeed.TablePosts, Op: changefeed.OpInsert, ID: post.ID, PostID: post.ID})
	return nil
}

func (m *PostRepository) GetByID(id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	out := *post
	return &out, nil
}

func (m *PostRepository) ListActive(now time.Time) ([]*models.Post, error) {
	all, err := m.ListAll()
	if err != nil {
		return nil, err
	}
	var active []*models.Post
	for _, p := range all {
		if p.IsActive(now) {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *PostRepository) ListAll() ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out := *p
		posts = append(posts, &out)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *PostRepository) Delete(id string) error {
	m.mutex.Lock()
	if m.Err != nil {
		m.mutex.Unlock()
		return m.Err
	}
	if _, exists := m.posts[id]; !exists {
		m.mutex.Unlock()
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	m.mutex.Unlock()

	publish(m.hub, changefeed.Event{Table: changefeed.TablePosts, Op: changefeed.OpDelete, ID: id, PostID: id})
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	m.mutex.Lock()
	m.CreateCalls++
	if m.Err != nil {
		m.mutex.Unlock()
		return m.Err
	}
	if err := comment.Validate(); err != nil {
		m.mutex.Unlock()
		return err
	}
	stored := *comment
	m.comments[comment.PostID] = append(m.comments[comment.PostID], &stored)
	m.mutex.Unlock()

	publish(m.hub, changefeed.Event{Table: changefeed.TableComments, Op: changefeed.OpInsert, ID: comment.ID, PostID: comment.PostID})
	return nil
}

func (m *CommentRepository) ListByPost(postID string) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var comments []*models.Comment
	for _, c := range m.comments[postID] {
		out := *c
		comments = append(comments, &out)
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (m *CommentRepository) CountByPost(postID string) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.comments[postID]), nil
}

func (m *CommentRepository) DeleteByPost(postID string) error {
	m.mutex.Lock()
	if m.Err != nil {
		m.mutex.Unlock()
		return m.Err
	}
	removed := m.comments[postID]
	delete(m.comments, postID)
	m.mutex.Unlock()

	for _, c := range removed {
		publish(m.hub, changefeed.Event{Table: changefeed.TableComments, Op: changefeed.OpDelete, ID: c.ID, PostID: postID})
	}
	return nil
}

// SessionRepository implementation
func (m *SessionRepository) Save(session *models.Session) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	stored := *session
	stored.Token = ""
	m.sessions[session.ID] = &stored
	return nil
}

func (m *SessionRepository) Get(id string) (*models.Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	s, ok := m.sessions[id]
	if !ok || !s.Valid(time.Now()) {
		return nil, repositories.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (m *SessionRepository) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, id)
	return nil
}
