// Package service orchestrates validation, ownership checks and persistence
// for the API's resources.
package service

import (
	"context"
	"crypto/md5" //nolint:gosec // gravatar addresses avatars by md5 of the email
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"devconnect/internal/auth"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/policy"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer issues identity tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type UserService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hashCost int
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GravatarURL derives a user's avatar from their email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email))) //nolint:gosec
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=200&r=pg&d=mm", hex.EncodeToString(sum[:]))
}

// Register creates an identity and returns a token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return "", models.NewConflictError("User already exists")
	} else if !models.IsKind(err, models.KindNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", passwordTooLong()
	}
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Avatar:   GravatarURL(in.Email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	observability.RecordEvent("user_registered")
	return s.issue(user)
}

func passwordTooLong() *models.AppError {
	msg := "Password must be at most 72 bytes"
	return models.NewValidationError(msg, models.FieldError{Field: "password", Message: msg})
}

// Login verifies credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return "", models.NewUnauthenticatedError("Invalid credentials")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", models.NewUnauthenticatedError("Invalid credentials")
		}
		return "", models.NewInternalError(err)
	}

	return s.issue(user)
}

// Me returns the requester's identity record.
func (s *UserService) Me(ctx context.Context, requester auth.Identity) (*models.User, error) {
	return s.userRepo.GetByID(ctx, requester.ID)
}

// DeleteAccount removes the requester together with everything they authored.
func (s *UserService) DeleteAccount(ctx context.Context, requester auth.Identity) error {
	user, err := s.userRepo.GetByID(ctx, requester.ID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(user.ID, requester, "delete this account"); err != nil {
		return err
	}
	if err := s.userRepo.DeleteCascade(ctx, user.ID); err != nil {
		return err
	}
	observability.RecordEvent("user_deleted")
	return nil
}

func (s *UserService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Name: user.Name})
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}
