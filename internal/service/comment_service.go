package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"postforlife/internal/auth"
	"postforlife/internal/metrics"
	"postforlife/internal/models"
	"postforlife/internal/reaction"
	"postforlife/internal/repository"
)

type CreateCommentInput struct {
	PostID          string
	Content         string
	ParentCommentID string
}

// CommentThread is a top-level comment with its direct replies expanded.
type CommentThread struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

type CommentService interface {
	CreateComment(ctx context.Context, authorID string, in CreateCommentInput) (*models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]CommentThread, error)
	ReactComment(ctx context.Context, userID, commentID, reactionType string) (reaction.Result, error)
	UpdateComment(ctx context.Context, userID, commentID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor auth.Identity, commentID string) (int64, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
}

func NewCommentService(commentRepo repository.CommentRepository) CommentService {
	return &commentService{commentRepo: commentRepo}
}

func (s *commentService) CreateComment(ctx context.Context, authorID string, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.PostID == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		AuthorID:  authorID,
		Content:   content,
		Reactions: []reaction.Reaction{},
		Replies:   []string{},
	}
	if in.ParentCommentID != "" {
		comment.ParentCommentID = lo.ToPtr(in.ParentCommentID)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments returns the top-level comments of a post, newest first, each
// with its direct replies. Deeper replies are reachable only through the ids
// in each reply's own Replies list.
func (s *commentService) ListComments(ctx context.Context, postID string) ([]CommentThread, error) {
	if postID == "" {
		return nil, fmt.Errorf("%w: missing post id", ErrInvalidInput)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(comments, func(c models.Comment) string { return c.CommentID })

	threads := lo.FilterMap(comments, func(c models.Comment, _ int) (CommentThread, bool) {
		if c.IsReply() {
			return CommentThread{}, false
		}

		replies := lo.FilterMap(c.Replies, func(id string, _ int) (models.Comment, bool) {
			reply, ok := byID[id]
			return reply, ok
		})

		return CommentThread{Comment: c, Replies: replies}, true
	})

	return threads, nil
}

func (s *commentService) ReactComment(ctx context.Context, userID, commentID, reactionType string) (reaction.Result, error) {
	if commentID == "" {
		return reaction.Result{}, fmt.Errorf("%w: missing comment id", ErrInvalidInput)
	}

	t, err := reaction.ParseType(reactionType)
	if err != nil {
		return reaction.Result{}, err
	}

	result, err := s.commentRepo.React(ctx, commentID, userID, t)
	if err != nil {
		return reaction.Result{}, err
	}

	metrics.ObserveReaction("comment", result.Change)
	return result, nil
}

func (s *commentService) UpdateComment(ctx context.Context, userID, commentID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: missing inputs", ErrInvalidInput)
	}

	return s.commentRepo.UpdateContent(ctx, commentID, userID, content)
}

// DeleteComment removes a comment and its direct replies and returns how many
// comments were deleted. Admins may delete any comment.
func (s *commentService) DeleteComment(ctx context.Context, actor auth.Identity, commentID string) (int64, error) {
	if commentID == "" {
		return 0, fmt.Errorf("%w: missing comment id", ErrInvalidInput)
	}

	return s.commentRepo.Delete(ctx, commentID, lo.Ternary(actor.IsAdmin(), "", actor.UserID))
}
