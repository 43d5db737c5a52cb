package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postforlife/internal/models"
)

func TestCommentRepository_Create(t *testing.T) {
	insert := q("INSERT INTO comments (comment_id, post_id, author_id, parent_comment_id, content, created_at, updated_at)")

	t.Run("top-level comment", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q("SELECT post_id FROM posts WHERE post_id = $1 FOR SHARE")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow("p1"))
		mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), "p1", "u1", nil, "hello", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		comment := &models.Comment{PostID: "p1", AuthorID: "u1", Content: "hello"}
		err := repo.Create(context.Background(), comment)

		require.NoError(t, err)
		assert.NotEmpty(t, comment.CommentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reply", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM posts WHERE post_id = $1 FOR SHARE")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow("p1"))
		mock.ExpectQuery(q("SELECT comment_id FROM comments WHERE comment_id = $1 AND post_id = $2 FOR SHARE")).
			WithArgs("c1", "p1").
			WillReturnRows(sqlmock.NewRows([]string{"comment_id"}).AddRow("c1"))
		mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), "p1", "u1", "c1", "agreed", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		parent := "c1"
		comment := &models.Comment{PostID: "p1", AuthorID: "u1", ParentCommentID: &parent, Content: "agreed"}

		assert.NoError(t, repo.Create(context.Background(), comment))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("parent on another post writes nothing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM posts WHERE post_id = $1 FOR SHARE")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow("p1"))
		mock.ExpectQuery(q("FROM comments WHERE comment_id = $1 AND post_id = $2 FOR SHARE")).
			WithArgs("c-other", "p1").
			WillReturnRows(sqlmock.NewRows([]string{"comment_id"}))
		mock.ExpectRollback()

		parent := "c-other"
		comment := &models.Comment{PostID: "p1", AuthorID: "u1", ParentCommentID: &parent, Content: "lost"}
		err := repo.Create(context.Background(), comment)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "parent comment")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing post", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q("FROM posts WHERE post_id = $1 FOR SHARE")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"post_id"}))
		mock.ExpectRollback()

		err := repo.Create(context.Background(), &models.Comment{PostID: "ghost", AuthorID: "u1", Content: "x"})

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_Delete(t *testing.T) {
	t.Run("owner deletes comment and direct replies only", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM comments WHERE comment_id = $1 AND author_id = $2")).
			WithArgs("c1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("DELETE FROM comments WHERE parent_comment_id = $1")).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		deleted, err := repo.Delete(context.Background(), "c1", "u1")

		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other user's comment leaves replies alone", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM comments WHERE comment_id = $1 AND author_id = $2")).
			WithArgs("c1", "intruder").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Delete(context.Background(), "c1", "intruder")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("admin", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewCommentRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(q("DELETE FROM comments WHERE comment_id = $1")).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("DELETE FROM comments WHERE parent_comment_id = $1")).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		deleted, err := repo.Delete(context.Background(), "c1", "")

		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	now := time.Now()
	parent := "c1"
	mock.ExpectQuery(q("WHERE c.post_id = $1 ORDER BY c.created_at DESC")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(commentColumnNames).
			AddRow("c2", "p1", "u2", parent, "reply", 0, 0, 0, now, now, "Bob Builder").
			AddRow("c1", "p1", "u1", nil, "root", 1, 0, 0, now.Add(-time.Minute), now, "Ada Lovelace"))
	mock.ExpectQuery(q("SELECT parent_comment_id, comment_id FROM comments WHERE parent_comment_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"parent_comment_id", "comment_id"}).AddRow("c1", "c2"))
	mock.ExpectQuery(q("SELECT comment_id AS owner_id, user_id, type FROM comment_reactions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "user_id", "type"}).AddRow("c1", "u3", "like"))

	comments, err := repo.ListByPost(context.Background(), "p1")

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.True(t, comments[0].IsReply())
	assert.Equal(t, "c1", *comments[0].ParentCommentID)
	assert.Equal(t, []string{}, comments[0].Replies)
	assert.Equal(t, []string{"c2"}, comments[1].Replies)
	assert.Equal(t, 1, comments[1].Likes)
	require.Len(t, comments[1].Reactions, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
