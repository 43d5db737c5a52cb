package models

import (
	"time"

	"postforlife/internal/reaction"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UserID               string         `json:"userId" db:"user_id"`
	Firstname            string         `json:"firstname" db:"firstname"`
	Lastname             string         `json:"lastname" db:"lastname"`
	Email                string         `json:"email" db:"email"`
	Mobile               string         `json:"mobile" db:"mobile"`
	PasswordHash         string         `json:"-" db:"password_hash"`
	Role                 string         `json:"role" db:"role"`
	AvatarURL            string         `json:"avatar" db:"avatar_url"`
	IsBlocked            bool           `json:"isBlocked" db:"is_blocked"`
	RefreshToken         string         `json:"-" db:"refresh_token"`
	PasswordChangedAt    *time.Time     `json:"passwordChangedAt,omitempty" db:"password_changed_at"`
	PasswordResetToken   string         `json:"-" db:"password_reset_token"`
	PasswordResetExpires *time.Time     `json:"-" db:"password_reset_expires"`
	CreatedAt            time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time      `json:"updatedAt" db:"updated_at"`
	Reactions            []UserReaction `json:"reactions" db:"-"`
}

// FullName is how authors are shown on posts and comments.
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}

// UserReaction is a reaction seen from the user's side.
type UserReaction struct {
	PostID string        `json:"post" db:"post_id"`
	Type   reaction.Type `json:"type" db:"type"`
}

type Post struct {
	PostID     string              `json:"postId" db:"post_id"`
	AuthorID   string              `json:"authorId" db:"author_id"`
	AuthorName string              `json:"author" db:"author_name"`
	Title      string              `json:"title" db:"title"`
	Content    string              `json:"content" db:"content"`
	Published  bool                `json:"published" db:"published"`
	CreatedAt  time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time           `json:"updatedAt" db:"updated_at"`
	Images     []string            `json:"images" db:"-"`
	Reactions  []reaction.Reaction `json:"reactions" db:"-"`
	Comments   []string            `json:"comments" db:"-"`

	reaction.Counts `json:"reactionCounts"`
}

type Comment struct {
	CommentID       string              `json:"commentId" db:"comment_id"`
	PostID          string              `json:"post" db:"post_id"`
	AuthorID        string              `json:"authorId" db:"author_id"`
	AuthorName      string              `json:"author" db:"author_name"`
	ParentCommentID *string             `json:"parentComment" db:"parent_comment_id"`
	Content         string              `json:"content" db:"content"`
	CreatedAt       time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time           `json:"updatedAt" db:"updated_at"`
	Reactions       []reaction.Reaction `json:"reactions" db:"-"`
	Replies         []string            `json:"replies" db:"-"`

	reaction.Counts `json:"reactionCounts"`
}

// IsReply reports whether the comment is threaded under another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil && *c.ParentCommentID != ""
}

type Image struct {
	ImageID    string    `json:"imageId" db:"image_id"`
	PostID     string    `json:"postId" db:"post_id"`
	ImageURL   string    `json:"imageUrl" db:"image_url"`
	ObjectName string    `json:"-" db:"object_name"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
