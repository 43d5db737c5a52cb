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

const postSelect = `
	SELECT p.post_id, p.author_id, p.title, p.content, p.published, p.likes, p.dislikes, p.loves,
		p.created_at, p.updated_at, COALESCE(u.firstname || ' ' || u.lastname, '') AS author_name
	FROM posts p
	LEFT JOIN users u ON u.user_id = p.author_id`

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (post_id, author_id, title, content, published, created_at, updated_at)
		VALUES (:post_id, :author_id, :title, :content, :published, :created_at, :updated_at)
	`

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.DB.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) getOne(ctx context.Context, query string, postID string) (*models.Post, error) {
	var post models.Post

	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// GetByID returns the post row regardless of its published flag, without
// related lists.
func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return r.getOne(ctx, postSelect+` WHERE p.post_id = $1`, postID)
}

// GetPublishedByID returns a published post with images, reactions and
// comment ids.
func (r *PostRepositoryImpl) GetPublishedByID(ctx context.Context, postID string) (*models.Post, error) {
	post, err := r.getOne(ctx, postSelect+` WHERE p.post_id = $1 AND p.published = TRUE`, postID)
	if err != nil {
		return nil, err
	}

	posts := []models.Post{*post}
	if err = r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (r *PostRepositoryImpl) GetByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	posts := []models.Post{}

	err := r.DB.SelectContext(ctx, &posts, postSelect+` WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts of user %s: %w", authorID, err)
	}

	if err = r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// List returns one page of published posts matching the query and the total
// number of matches.
func (r *PostRepositoryImpl) List(ctx context.Context, query PostQuery) ([]models.Post, int, error) {
	if err := query.Validate(); err != nil {
		return nil, 0, err
	}

	where, args, err := query.where()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err = r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts p WHERE `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	posts := []models.Post{}
	if total == 0 {
		return posts, 0, nil
	}

	pageQuery := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		postSelect, where, query.orderBy(), len(args)+1, len(args)+2)

	if err = r.DB.SelectContext(ctx, &posts, pageQuery, append(args, query.Limit, query.Offset())...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	if err = r.attachRelations(ctx, posts); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// Update changes title, content and published flag of a post owned by
// post.AuthorID.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = :title,
			content = :content,
			published = :published,
			updated_at = :updated_at
		WHERE post_id = :post_id AND author_id = :author_id
	`

	post.UpdatedAt = time.Now()

	result, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	return expectAffected(result, "post "+post.PostID+" of this author")
}

// Delete removes a post and returns its images so their objects can be
// removed from storage. An empty authorID deletes regardless of owner.
// Comments, images and reactions go with the post through ON DELETE CASCADE.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID, authorID string) ([]models.Image, error) {
	var images []models.Image

	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		err := tx.SelectContext(ctx, &images,
			`SELECT image_id, post_id, image_url, object_name, created_at FROM images WHERE post_id = $1`, postID)
		if err != nil {
			return fmt.Errorf("failed to get post images: %w", err)
		}

		var result sql.Result
		if authorID == "" {
			result, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
		} else {
			result, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1 AND author_id = $2`, postID, authorID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		return expectAffected(result, "post "+postID)
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *PostRepositoryImpl) React(ctx context.Context, postID, userID string, t reaction.Type) (reaction.Result, error) {
	return applyReaction(ctx, r.DB, postTarget, postID, userID, t)
}

type postChild struct {
	PostID string `db:"post_id"`
	Value  string `db:"value"`
}

// attachRelations fills images, reactions and comment ids of posts in place.
func (r *PostRepositoryImpl) attachRelations(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := lo.Map(posts, func(p models.Post, _ int) string { return p.PostID })

	images, err := r.children(ctx, `SELECT post_id, image_url AS value FROM images WHERE post_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return fmt.Errorf("failed to get post images: %w", err)
	}

	comments, err := r.children(ctx, `SELECT post_id, comment_id AS value FROM comments WHERE post_id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return fmt.Errorf("failed to get post comments: %w", err)
	}

	reactions, err := reactionsByTarget(ctx, r.DB, postTarget, ids)
	if err != nil {
		return err
	}

	for i := range posts {
		id := posts[i].PostID
		posts[i].Images = lo.Ternary(images[id] != nil, images[id], []string{})
		posts[i].Comments = lo.Ternary(comments[id] != nil, comments[id], []string{})
		posts[i].Reactions = lo.Ternary(reactions[id] != nil, reactions[id], []reaction.Reaction{})
	}

	return nil
}

func (r *PostRepositoryImpl) children(ctx context.Context, query string, ids []string) (map[string][]string, error) {
	var rows []postChild
	if err := r.DB.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	grouped := make(map[string][]string, len(ids))
	for _, row := range rows {
		grouped[row.PostID] = append(grouped[row.PostID], row.Value)
	}

	return grouped, nil
}
