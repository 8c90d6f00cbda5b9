package controllers

import (
	"net/http"
	"time"

	"svyasa/app/auth"
	"svyasa/app/services"

	"github.com/gorilla/mux"
)

const postNotFound = "Post not found or has expired"

// PostController handles HTTP requests for posts
type PostController struct {
	postService *services.PostService
	now         func() time.Time
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{
		postService: postService,
		now:         time.Now,
	}
}

type createPostRequest struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}

// Index lists active posts. The order query parameter is "recent" (default)
// or "trending".
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	order, err := services.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		sendError(w, http.StatusBadRequest, "order must be recent or trending")
		return
	}

	posts, err := pc.postService.ListActivePosts(r.Context(), pc.now(), order)
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"order": order,
	})
}

// Show returns an active post with its comments.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"], pc.now())
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), req.Nickname, req.Content)
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Delete removes a post and its comments. The admin session comes from the
// request context.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	session := auth.FromContext(r.Context())
	if err := pc.postService.DeletePost(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		handleServiceError(w, r, err, "Post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
