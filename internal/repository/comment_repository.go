package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"postforlife/internal/models"
	"postforlife/internal/reaction"
)

const commentSelect = `
	SELECT c.comment_id, c.post_id, c.author_id, c.parent_comment_id, c.content, c.likes, c.dislikes, c.loves,
		c.created_at, c.updated_at, COALESCE(u.firstname || ' ' || u.lastname, '') AS author_name
	FROM comments c
	LEFT JOIN users u ON u.user_id = c.author_id`

type CommentRepositoryImpl struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

// Create inserts a comment after checking that its post exists and that the
// parent, when set, belongs to the same post. Nothing is written when a check
// fails. The new id shows up in the parent's replies and the post's comments
// because both are read from comments.parent_comment_id and comments.post_id.
func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var postID string
		err := tx.GetContext(ctx, &postID, `SELECT post_id FROM posts WHERE post_id = $1 FOR SHARE`, comment.PostID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: post %s", ErrNotFound, comment.PostID)
			}
			return fmt.Errorf("failed to check post: %w", err)
		}

		if comment.IsReply() {
			var parentID string
			err = tx.GetContext(ctx, &parentID,
				`SELECT comment_id FROM comments WHERE comment_id = $1 AND post_id = $2 FOR SHARE`,
				*comment.ParentCommentID, comment.PostID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("%w: parent comment %s", ErrNotFound, *comment.ParentCommentID)
				}
				return fmt.Errorf("failed to check parent comment: %w", err)
			}
		}

		query := `
			INSERT INTO comments (comment_id, post_id, author_id, parent_comment_id, content, created_at, updated_at)
			VALUES (:comment_id, :post_id, :author_id, :parent_comment_id, :content, :created_at, :updated_at)
		`

		if _, err = tx.NamedExecContext(ctx, query, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		return nil
	})
}

func (r *CommentRepositoryImpl) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment

	err := r.db.GetContext(ctx, &comment, commentSelect+` WHERE c.comment_id = $1`, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: comment %s", ErrNotFound, commentID)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	comments := []models.Comment{comment}
	if err = r.attachRelations(ctx, comments); err != nil {
		return nil, err
	}

	return &comments[0], nil
}

// ListByPost returns every comment of a post, newest first, with reactions and
// reply ids attached.
func (r *CommentRepositoryImpl) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}

	err := r.db.SelectContext(ctx, &comments,
		commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at DESC, c.comment_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of post %s: %w", postID, err)
	}

	if err = r.attachRelations(ctx, comments); err != nil {
		return nil, err
	}

	return comments, nil
}

// UpdateContent edits a comment owned by authorID.
func (r *CommentRepositoryImpl) UpdateContent(ctx context.Context, commentID, authorID, content string) (*models.Comment, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = $1, updated_at = $2 WHERE comment_id = $3 AND author_id = $4`,
		content, time.Now(), commentID, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	if err = expectAffected(result, "comment "+commentID+" of this author"); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, commentID)
}

// Delete removes a comment and its direct replies. An empty authorID deletes
// regardless of owner; otherwise the owner is part of the delete filter, so
// "not found" and "not yours" look the same.
//
// Only one level is cascaded: replies of replies keep pointing at a deleted
// parent.
func (r *CommentRepositoryImpl) Delete(ctx context.Context, commentID, authorID string) (int64, error) {
	var deleted int64

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var (
			result sql.Result
			err    error
		)
		if authorID == "" {
			result, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
		} else {
			result, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = $1 AND author_id = $2`, commentID, authorID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		if err = expectAffected(result, "comment "+commentID); err != nil {
			return err
		}

		result, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE parent_comment_id = $1`, commentID)
		if err != nil {
			return fmt.Errorf("failed to delete replies: %w", err)
		}

		replies, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows: %w", err)
		}

		deleted = 1 + replies
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (r *CommentRepositoryImpl) React(ctx context.Context, commentID, userID string, t reaction.Type) (reaction.Result, error) {
	return applyReaction(ctx, r.db, commentTarget, commentID, userID, t)
}

type replyRow struct {
	ParentID  string `db:"parent_comment_id"`
	CommentID string `db:"comment_id"`
}

func (r *CommentRepositoryImpl) attachRelations(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := lo.Map(comments, func(c models.Comment, _ int) string { return c.CommentID })

	var rows []replyRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT parent_comment_id, comment_id FROM comments WHERE parent_comment_id = ANY($1) ORDER BY created_at`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get replies: %w", err)
	}

	replies := lo.GroupBy(rows, func(row replyRow) string { return row.ParentID })

	reactions, err := reactionsByTarget(ctx, r.db, commentTarget, ids)
	if err != nil {
		return err
	}

	for i := range comments {
		id := comments[i].CommentID
		comments[i].Replies = lo.Map(replies[id], func(row replyRow, _ int) string { return row.CommentID })
		comments[i].Reactions = lo.Ternary(reactions[id] != nil, reactions[id], []reaction.Reaction{})
	}

	return nil
}
