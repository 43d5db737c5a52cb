package service

import (
	"errors"

	"postforlife/internal/repository"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid password or username")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBlocked            = errors.New("account is blocked")

	ErrNotFound   = repository.ErrNotFound
	ErrEmailUsed  = repository.ErrEmailTaken
	ErrMobileUsed = repository.ErrMobileTaken
)
