package service

// AuthService is the business logic for accounts:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It never sees an http.Request and never sets status codes. Input problems
// come back as apperror.ErrValidation, bad credentials as
// apperror.ErrUnauthorized.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/auth"
	"github.com/sakif/study-cards/internal/model"
	"github.com/sakif/study-cards/internal/repository"
)

const (
	MinPasswordLength = 6
	MaxPasswordBytes  = auth.MaxPasswordBytes
)

// AuthService handles registration, login and account lifecycle.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validate:  newValidator(),
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

type registerInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	in := registerInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("", "Please provide name, email, and password")
	}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "email" {
			return nil, apperror.ValidationFailed("email", "Please provide a valid email")
		}
		return nil, apperror.ValidationFailed("", "Please provide name, email, and password")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("email", "User already exists with this email")
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user)
}

// Login checks credentials. An unknown email and a wrong password produce
// the same Unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Please provide email and password")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
		}
		s.logger.Info("login rejected", slog.String("userID", user.ID))
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	return s.issue(user)
}

// Me returns the user for the given internal ID.
func (s *AuthService) Me(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("Not authorized")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// DeleteAccount removes the user. Their flashcard sets are removed with them.
func (s *AuthService) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		return apperror.Unauthorized("Not authorized")
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/auth: deleting user %s: %w", id, err)
	}

	s.logger.Info("account deleted", slog.String("userID", id))
	return nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
