package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"postforlife/internal/auth"
	"postforlife/internal/config"
	"postforlife/internal/metrics"
	"postforlife/internal/models"
	"postforlife/internal/reaction"
	"postforlife/internal/repository"
	"postforlife/internal/storage"
)

// MaxImagesPerUpload bounds the files accepted by one image upload.
const MaxImagesPerUpload = 10

type CreatePostInput struct {
	Title     string
	Content   string
	Published *bool
}

type UpdatePostInput struct {
	Title     *string
	Content   *string
	Published *bool
}

// PostDetail is a single post with its top-level comments expanded.
type PostDetail struct {
	models.Post
	Comments []models.Comment `json:"comments"`
}

type PostService interface {
	CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*models.Post, error)
	ListPosts(ctx context.Context, query repository.PostQuery) ([]models.Post, int, error)
	GetPost(ctx context.Context, postID string) (*PostDetail, error)
	GetPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	UpdatePost(ctx context.Context, userID, postID string, in UpdatePostInput) (*models.Post, error)
	DeletePost(ctx context.Context, actor auth.Identity, postID string) error
	UploadImages(ctx context.Context, actor auth.Identity, postID string, files []File) (*models.Post, error)
	ReactPost(ctx context.Context, userID, postID, reactionType string) (reaction.Result, error)
}

type postService struct {
	postRepo    repository.PostRepository
	imageRepo   repository.ImageRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
	cfg         *config.Config
}

func NewPostService(postRepo repository.PostRepository, imageRepo repository.ImageRepository,
	commentRepo repository.CommentRepository, storage storage.Storage, cfg *config.Config) PostService {
	return &postService{
		postRepo:    postRepo,
		imageRepo:   imageRepo,
		commentRepo: commentRepo,
		storage:     storage,
		cfg:         cfg,
	}
}

func (p *postService) CreatePost(ctx context.Context, authorID string, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: missing title or content", ErrInvalidInput)
	}

	post := &models.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		Published: in.Published == nil || *in.Published,
		Images:    []string{},
		Reactions: []reaction.Reaction{},
		Comments:  []string{},
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// ListPosts fills in the default page and page size before querying.
func (p *postService) ListPosts(ctx context.Context, query repository.PostQuery) ([]models.Post, int, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = p.cfg.LimitPosts
	}

	return p.postRepo.List(ctx, query)
}

func (p *postService) GetPost(ctx context.Context, postID string) (*PostDetail, error) {
	post, err := p.postRepo.GetPublishedByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := p.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &PostDetail{
		Post:     *post,
		Comments: lo.Filter(comments, func(c models.Comment, _ int) bool { return !c.IsReply() }),
	}, nil
}

func (p *postService) GetPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return p.postRepo.GetByAuthorID(ctx, userID)
}

// UpdatePost edits a post owned by userID. Posts of other users are reported
// as not found.
func (p *postService) UpdatePost(ctx context.Context, userID, postID string, in UpdatePostInput) (*models.Post, error) {
	if in.Title == nil && in.Content == nil && in.Published == nil {
		return nil, fmt.Errorf("%w: missing inputs", ErrInvalidInput)
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, fmt.Errorf("%w: post %s of this author", ErrNotFound, postID)
	}

	setIfPresent(&post.Title, in.Title)
	setIfPresent(&post.Content, in.Content)
	if in.Published != nil {
		post.Published = *in.Published
	}

	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Content) == "" {
		return nil, fmt.Errorf("%w: title and content cannot be empty", ErrInvalidInput)
	}

	if err = p.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// DeletePost removes a post with its comments, images and reactions. Admins
// may delete any post, other users only their own. Image objects are removed
// from storage after the rows are gone; failures there are only logged.
func (p *postService) DeletePost(ctx context.Context, actor auth.Identity, postID string) error {
	if postID == "" {
		return fmt.Errorf("%w: missing post id", ErrInvalidInput)
	}

	images, err := p.postRepo.Delete(ctx, postID, lo.Ternary(actor.IsAdmin(), "", actor.UserID))
	if err != nil {
		return err
	}

	for _, image := range images {
		if err := p.storage.DeleteImage(ctx, image.ObjectName); err != nil {
			slog.WarnContext(ctx, "failed to remove post image", "post_id", postID, "object", image.ObjectName, "error", err)
		}
	}

	return nil
}

// UploadImages attaches up to MaxImagesPerUpload images to a post. The images
// are recorded in one transaction; on any failure the objects already put in
// storage are removed again.
func (p *postService) UploadImages(ctx context.Context, actor auth.Identity, postID string, files []File) (*models.Post, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images uploaded", ErrInvalidInput)
	}
	if len(files) > MaxImagesPerUpload {
		return nil, fmt.Errorf("%w: at most %d images per upload", ErrInvalidInput, MaxImagesPerUpload)
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: post %s of this author", ErrNotFound, postID)
	}

	var images []*models.Image
	rollback := func() {
		for _, image := range images {
			if err := p.storage.DeleteImage(ctx, image.ObjectName); err != nil {
				slog.WarnContext(ctx, "failed to remove uploaded image", "object", image.ObjectName, "error", err)
			}
		}
	}

	for _, file := range files {
		objectName, url, err := p.storage.UploadImage(ctx, "posts/"+postID, file.Name, file.Reader, file.Size)
		if err != nil {
			rollback()
			return nil, err
		}
		images = append(images, &models.Image{PostID: postID, ImageURL: url, ObjectName: objectName})
	}

	if err = p.imageRepo.Create(ctx, images...); err != nil {
		rollback()
		return nil, err
	}

	stored, err := p.imageRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Images = lo.Map(stored, func(image models.Image, _ int) string { return image.ImageURL })

	return post, nil
}

func (p *postService) ReactPost(ctx context.Context, userID, postID, reactionType string) (reaction.Result, error) {
	if postID == "" {
		return reaction.Result{}, fmt.Errorf("%w: missing post id", ErrInvalidInput)
	}

	t, err := reaction.ParseType(reactionType)
	if err != nil {
		return reaction.Result{}, err
	}

	result, err := p.postRepo.React(ctx, postID, userID, t)
	if err != nil {
		return reaction.Result{}, err
	}

	metrics.ObserveReaction("post", result.Change)
	return result, nil
}
