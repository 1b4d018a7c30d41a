package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
)

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// CreateRequest is the admin variant of RegisterRequest that may pick a role.
type CreateRequest struct {
	RegisterRequest
	Role Role
}

type UpdateRequest struct {
	Username *string
	Email    *string
	FullName *string
	Role     *Role
}

// Service defines business logic related to users.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, login, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	Delete(ctx context.Context, id, actorID string) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    *logger.Logger

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher, log *logger.Logger) Service {
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:              repo,
		hasher:            hasher,
		log:               log.With("component", "user"),
		minPasswordLength: 8,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return s.create(ctx, req, RoleUser)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.create(ctx, req.RegisterRequest, role)
}

func (s *service) create(ctx context.Context, req RegisterRequest, role Role) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	if len(req.Password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Hash the password.
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
	}

	// Uniqueness of username and email is enforced by the database.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user by login: %w", err)
	}

	// Compare password hash.
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Update last_login_at (best effort; do not fail login if update fails).
	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("update last login failed", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}
		u.Username = username
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		u.Email = email
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, ErrInvalidRole
		}
		u.Role = *req.Role
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	if len(next) < s.minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// Delete retires the user. An admin cannot retire their own account.
func (s *service) Delete(ctx context.Context, id, actorID string) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}
	return s.repo.SoftDelete(ctx, id)
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
