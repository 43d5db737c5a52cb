package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"postforlife/internal/models"
)

type ImageRepositoryImpl struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepositoryImpl {
	return &ImageRepositoryImpl{db: db}
}

// Create inserts images in one transaction, so either all of them are
// recorded or none.
func (r *ImageRepositoryImpl) Create(ctx context.Context, images ...*models.Image) error {
	query := `
		INSERT INTO images (image_id, post_id, image_url, object_name, created_at)
		VALUES (:image_id, :post_id, :image_url, :object_name, :created_at)
	`

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, image := range images {
			if image.ImageID == "" {
				image.ImageID = uuid.New().String()
			}
			if image.CreatedAt.IsZero() {
				image.CreatedAt = time.Now()
			}

			if _, err := tx.NamedExecContext(ctx, query, image); err != nil {
				return fmt.Errorf("failed to create image: %w", err)
			}
		}
		return nil
	})
}

func (r *ImageRepositoryImpl) GetByPostID(ctx context.Context, postID string) ([]models.Image, error) {
	images := []models.Image{}

	err := r.db.SelectContext(ctx, &images,
		`SELECT image_id, post_id, image_url, object_name, created_at FROM images WHERE post_id = $1 ORDER BY created_at`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}

	return images, nil
}
