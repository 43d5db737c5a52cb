package service

import (
	"io"

	"postforlife/internal/config"
	"postforlife/internal/mail"
	"postforlife/internal/repository"
	"postforlife/internal/storage"
)

// Tokens issues and verifies the JWTs handed out at login.
type Tokens interface {
	IssueAccess(userID, role string) (string, error)
	IssueRefresh(userID string) (string, error)
	ParseRefresh(tokenString string) (string, error)
}

// File is one uploaded file as read from a multipart form.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

type Service struct {
	User    UserService
	Post    PostService
	Auth    AuthService
	Comment CommentService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, mailer mail.Mailer, tokens Tokens) *Service {
	return &Service{
		User:    NewUserService(rep.User, storage),
		Post:    NewPostService(rep.Post, rep.Image, rep.Comment, storage, cfg),
		Auth:    NewAuthService(rep.User, tokens, mailer, cfg),
		Comment: NewCommentService(rep.Comment),
	}
}
