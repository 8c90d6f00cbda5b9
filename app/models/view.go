package models

// Field limits, counted in runes.
const (
	MaxNicknameLength = 30
	MaxPostLength     = 1000
	MaxCommentLength  = 500
)

// PostView is a post decorated for display.
type PostView struct {
	*Post
	AvatarURL     string `json:"avatar_url"`
	CommentCount  int    `json:"comment_count"`
	CreatedAgo    string `json:"created_ago"`
	TimeRemaining string `json:"time_remaining"`
	Active        bool   `json:"active"`
}

// CommentView is a comment decorated for display.
type CommentView struct {
	*Comment
	AvatarURL  string `json:"avatar_url"`
	CreatedAgo string `json:"created_ago"`
}

// PostDetail is a single post with its comments, oldest first.
type PostDetail struct {
	*PostView
	Comments []*CommentView `json:"comments"`
}

// DashboardStats summarizes the store for the admin view.
type DashboardStats struct {
	TotalPosts    int `json:"total_posts"`
	ActivePosts   int `json:"active_posts"`
	TotalComments int `json:"total_comments"`
}

// Dashboard lists every post, expired ones included.
type Dashboard struct {
	Stats DashboardStats `json:"stats"`
	Posts []*PostView    `json:"posts"`
}
