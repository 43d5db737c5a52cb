package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"postforlife/internal/models"
	"postforlife/internal/reaction"
	"postforlife/internal/service"
)

func TestCreateComment(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		h, m := createTestHandler()
		parent := "c1"
		m.comment.On("CreateComment", mock.Anything, "u1", service.CreateCommentInput{
			PostID: "p1", Content: "agreed", ParentCommentID: "c1",
		}).Return(&models.Comment{CommentID: "c2", ParentCommentID: &parent}, nil)

		rr := httptest.NewRecorder()
		h.CreateComment(rr, jsonRequest(t, http.MethodPost, "/api/comment/", map[string]string{
			"content": "agreed", "postid": "p1", "commentid": "c1",
		}), owner)

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Comment successfully", body["mess"])
		assert.Equal(t, "c1", body["comment"].(map[string]any)["parentComment"])
	})

	t.Run("parent belongs to another post", func(t *testing.T) {
		h, m := createTestHandler()
		m.comment.On("CreateComment", mock.Anything, "u1", mock.Anything).Return(nil, service.ErrNotFound)

		rr := httptest.NewRecorder()
		h.CreateComment(rr, jsonRequest(t, http.MethodPost, "/api/comment/", map[string]string{
			"content": "agreed", "postid": "p1", "commentid": "c-elsewhere",
		}), owner)

		assertJSONError(t, rr, http.StatusNotFound, "")
	})

	t.Run("missing post", func(t *testing.T) {
		h, _ := createTestHandler()

		rr := httptest.NewRecorder()
		h.CreateComment(rr, jsonRequest(t, http.MethodPost, "/api/comment/", map[string]string{"content": "x"}), owner)

		assertJSONError(t, rr, http.StatusBadRequest, "Missing inputs: postid")
	})
}

func TestGetComments(t *testing.T) {
	h, m := createTestHandler()
	m.comment.On("ListComments", mock.Anything, "p1").Return([]service.CommentThread{
		{Comment: models.Comment{CommentID: "c1"}, Replies: []models.Comment{{CommentID: "c2"}}},
	}, nil)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/comment/p1", nil), map[string]string{"postId": "p1"})
	rr := httptest.NewRecorder()
	h.GetComments(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["results"])

	thread := body["comments"].([]any)[0].(map[string]any)
	replies := thread["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Equal(t, "c2", replies[0].(map[string]any)["commentId"])
}

func TestReactComment(t *testing.T) {
	h, m := createTestHandler()
	m.comment.On("ReactComment", mock.Anything, "u1", "c1", "like").Return(reaction.Result{
		Change: reaction.Removed,
	}, nil)

	rr := httptest.NewRecorder()
	h.ReactComment(rr, jsonRequest(t, http.MethodPut, "/api/comment/reaction", map[string]string{
		"commentid": "c1", "reactionType": "like",
	}), owner)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "removed", decodeBody(t, rr)["mess"])
}

func TestUpdateComment(t *testing.T) {
	h, m := createTestHandler()
	m.comment.On("UpdateComment", mock.Anything, "u1", "c1", "edited").Return(&models.Comment{CommentID: "c1", Content: "edited"}, nil)
	m.comment.On("UpdateComment", mock.Anything, "u1", "c9", "edited").Return(nil, service.ErrNotFound)

	req := jsonRequest(t, http.MethodPut, "/api/comment/update/c1", map[string]string{"content": "edited"})
	rr := httptest.NewRecorder()
	h.UpdateComment(rr, mux.SetURLVars(req, map[string]string{"commentid": "c1"}), owner)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = jsonRequest(t, http.MethodPut, "/api/comment/update/c9", map[string]string{"content": "edited"})
	rr = httptest.NewRecorder()
	h.UpdateComment(rr, mux.SetURLVars(req, map[string]string{"commentid": "c9"}), owner)
	assertJSONError(t, rr, http.StatusBadRequest, "Update is failed")
}

func TestDeleteComment(t *testing.T) {
	t.Run("removes comment and direct replies", func(t *testing.T) {
		h, m := createTestHandler()
		m.comment.On("DeleteComment", mock.Anything, owner, "c1").Return(int64(3), nil)

		rr := httptest.NewRecorder()
		h.DeleteComment(rr, httptest.NewRequest(http.MethodDelete, "/api/comment/?commentid=c1", nil), owner)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(3), decodeBody(t, rr)["deleted"])
	})

	t.Run("not the author", func(t *testing.T) {
		h, m := createTestHandler()
		m.comment.On("DeleteComment", mock.Anything, owner, "c1").Return(int64(0), service.ErrNotFound)

		rr := httptest.NewRecorder()
		h.DeleteComment(rr, httptest.NewRequest(http.MethodDelete, "/api/comment/?commentid=c1", nil), owner)

		assertJSONError(t, rr, http.StatusBadRequest, "Delete is failed")
	})
}
