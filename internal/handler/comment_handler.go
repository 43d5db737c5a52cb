package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"postforlife/internal/auth"
	"postforlife/internal/service"
)

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
	PostID  string `json:"postid" validate:"required"`
	// ParentID makes the comment a reply.
	ParentID string `json:"commentid"`
}

type ReactCommentRequest struct {
	CommentID    string `json:"commentid" validate:"required"`
	ReactionType string `json:"reactionType" validate:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req CreateCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.CommentService.CreateComment(r.Context(), id.UserID, service.CreateCommentInput{
		PostID:          req.PostID,
		Content:         req.Content,
		ParentCommentID: req.ParentID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"mess": "Comment successfully", "comment": comment}, http.StatusOK)
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	threads, err := h.CommentService.ListComments(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"results": len(threads), "comments": threads}, http.StatusOK)
}

func (h *Handlers) ReactComment(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req ReactCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.CommentService.ReactComment(r.Context(), id.UserID, req.CommentID, req.ReactionType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"mess":           result.Change.String(),
		"reactionCounts": result.Counts,
	}, http.StatusOK)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req UpdateCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.CommentService.UpdateComment(r.Context(), id.UserID, mux.Vars(r)["commentid"], req.Content)
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, "Update is failed", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"comment": comment}, http.StatusOK)
}

// DeleteComment removes the comment and its direct replies.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	commentID := r.URL.Query().Get("commentid")
	if commentID == "" {
		WriteError(w, "Missing inputs: commentid", http.StatusBadRequest)
		return
	}

	deleted, err := h.CommentService.DeleteComment(r.Context(), id, commentID)
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, "Delete is failed", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"deleted": deleted}, http.StatusOK)
}
