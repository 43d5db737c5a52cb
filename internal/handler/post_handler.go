package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"postforlife/internal/auth"
	"postforlife/internal/models"
	"postforlife/internal/repository"
	"postforlife/internal/service"
)

type CreatePostRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Published *bool  `json:"published"`
}

type UpdatePostRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

type ReactRequest struct {
	PostID       string `json:"postid" validate:"required"`
	ReactionType string `json:"reactionType" validate:"required"`
}

// reservedParams are list query keys that are never filters.
var reservedParams = []string{"page", "limit", "sort", "fields"}

// postResponseFields are the keys a client may select with ?fields=.
var postResponseFields = []string{
	"postId", "author", "authorId", "title", "content", "published",
	"createdAt", "updatedAt", "images", "reactions", "comments", "reactionCounts",
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	query, err := h.parsePostQuery(values)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	fields, err := parseFields(values.Get("fields"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	posts, total, err := h.PostService.ListPosts(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var body any = posts
	if len(fields) > 0 {
		body = lo.Map(posts, func(p models.Post, _ int) map[string]any {
			return lo.PickByKeys(postFields(p), fields)
		})
	}

	WriteSuccess(w, map[string]any{"results": total, "posts": body}, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["postid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"posts": post}, http.StatusOK)
}

func (h *Handlers) GetCurrentPosts(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	posts, err := h.PostService.GetPostsByUser(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"posts": posts}, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req CreatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), id.UserID, service.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"mess": "Create successfully", "post": post}, http.StatusOK)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req UpdatePostRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), id.UserID, mux.Vars(r)["postid"], service.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, "Update is failed", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"post": post}, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	postID := r.URL.Query().Get("postid")
	if postID == "" {
		WriteError(w, "Missing inputs: postid", http.StatusBadRequest)
		return
	}

	err := h.PostService.DeletePost(r.Context(), id, postID)
	if errors.Is(err, service.ErrNotFound) {
		WriteError(w, "Delete is failed", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"deletePost": "Post is deleted"}, http.StatusOK)
}

func (h *Handlers) ReactPost(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req ReactRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.PostService.ReactPost(r.Context(), id.UserID, req.PostID, req.ReactionType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"mess":           result.Change.String(),
		"reactionCounts": result.Counts,
	}, http.StatusOK)
}

func (h *Handlers) UploadImages(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if !h.parseMultipart(w, r) {
		return
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		WriteError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	files, err := openFiles(headers)
	defer func() {
		for _, f := range files {
			f.Reader.(multipart.File).Close()
		}
	}()
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.PostService.UploadImages(r.Context(), id, mux.Vars(r)["postid"], files)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{"post": post}, http.StatusOK)
}

func openFiles(headers []*multipart.FileHeader) ([]service.File, error) {
	files := make([]service.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return files, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}
		files = append(files, service.File{Name: header.Filename, Size: header.Size, Reader: f})
	}
	return files, nil
}

// parsePostQuery reads page, limit and sort; every other key is a filter
// such as likes[gte]=10.
func (h *Handlers) parsePostQuery(values url.Values) (repository.PostQuery, error) {
	var query repository.PostQuery
	var err error

	if query.Page, err = positiveInt(values.Get("page"), 1); err != nil {
		return query, fmt.Errorf("%w: page %v", repository.ErrInvalidQuery, err)
	}
	if query.Limit, err = positiveInt(values.Get("limit"), h.Cfg.LimitPosts); err != nil {
		return query, fmt.Errorf("%w: limit %v", repository.ErrInvalidQuery, err)
	}
	if h.Cfg.MaxLimitPosts > 0 && query.Limit > h.Cfg.MaxLimitPosts {
		return query, fmt.Errorf("%w: limit must be at most %d", repository.ErrInvalidQuery, h.Cfg.MaxLimitPosts)
	}
	if query.Limit > 0 {
		if err = query.Validate(); err != nil {
			return query, err
		}
	}
	if query.Sort, err = repository.ParseSort(values.Get("sort")); err != nil {
		return query, err
	}

	keys := lo.Without(lo.Keys(values), reservedParams...)
	slices.Sort(keys)

	for _, key := range keys {
		field, op, err := repository.ParseFilterKey(key)
		if err != nil {
			return query, err
		}
		for _, v := range values[key] {
			query.Filters = append(query.Filters, repository.Filter{Field: field, Operator: op, Value: v})
		}
	}

	return query, nil
}

func positiveInt(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// parseFields parses ?fields=title,author. postId is always returned.
func parseFields(value string) ([]string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	fields := lo.FilterMap(strings.Split(value, ","), func(f string, _ int) (string, bool) {
		f = strings.TrimSpace(f)
		return f, f != ""
	})

	if unknown := lo.Without(fields, postResponseFields...); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: cannot select %s", repository.ErrInvalidQuery, strings.Join(unknown, ", "))
	}

	return lo.Uniq(append([]string{"postId"}, fields...)), nil
}

func postFields(p models.Post) map[string]any {
	return map[string]any{
		"postId":         p.PostID,
		"author":         p.AuthorName,
		"authorId":       p.AuthorID,
		"title":          p.Title,
		"content":        p.Content,
		"published":      p.Published,
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
		"images":         p.Images,
		"reactions":      p.Reactions,
		"comments":       p.Comments,
		"reactionCounts": p.Counts,
	}
}
