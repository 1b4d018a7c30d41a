package http

import (
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Search string `form:"search" binding:"omitempty,max=100"`
	Role   string `form:"role" binding:"omitempty,oneof=admin user"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// RegisterRequest defines the payload for self registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"omitempty,max=100"`
}

func (r *RegisterRequest) ToServiceRequest() user.RegisterRequest {
	return user.RegisterRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		FullName: r.FullName,
	}
}

// CreateUserRequest is the admin payload; it may set a role.
type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role" binding:"omitempty,oneof=admin user"`
}

// LoginRequest accepts either a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines fields allowed to be updated via PATCH /users/:id.
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin user"`
}

func (r *UpdateUserRequest) ToServiceRequest() user.UpdateRequest {
	req := user.UpdateRequest{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
	}
	if r.Role != nil {
		role := user.Role(*r.Role)
		req.Role = &role
	}
	return req
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// MeResponse returns the current user info.
type MeResponse struct {
	User UserResponse `json:"user"`
}
