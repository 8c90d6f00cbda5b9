package controllers

import (
	"net/http"

	"svyasa/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

type createCommentRequest struct {
	Nickname string `json:"nickname"`
	Content  string `json:"content"`
}

// Index lists a post's comments, oldest first.
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	comments, err := cc.commentService.ListComments(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), mux.Vars(r)["postId"], req.Nickname, req.Content)
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Count returns the number of comments on a post.
func (cc *CommentController) Count(w http.ResponseWriter, r *http.Request) {
	count, err := cc.commentService.CountComments(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		handleServiceError(w, r, err, postNotFound)
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"count": count})
}
