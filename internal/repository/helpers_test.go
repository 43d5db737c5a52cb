package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

// q quotes a SQL fragment for sqlmock's regexp matcher.
func q(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

var postColumnNames = []string{
	"post_id", "author_id", "title", "content", "published", "likes", "dislikes", "loves",
	"created_at", "updated_at", "author_name",
}

var commentColumnNames = []string{
	"comment_id", "post_id", "author_id", "parent_comment_id", "content", "likes", "dislikes", "loves",
	"created_at", "updated_at", "author_name",
}
