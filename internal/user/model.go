package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/softdelete"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrUsernameTaken      = apperror.New(http.StatusConflict, "username already taken")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid username or password")
	ErrUsernameRequired   = apperror.New(http.StatusBadRequest, "username is required")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password must be at least 8 characters")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
	ErrCannotDeleteSelf   = apperror.New(http.StatusBadRequest, "cannot delete your own account")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account that can sign in.
type User struct {
	ID           string // UUID
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	LastLoginAt  *time.Time
	softdelete.Marker
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Search string // matches username, email or full name
	Role   Role

	Page     int
	PageSize int
}
