package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// Register handles self registration. New accounts always get the user role.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Register(c.Request.Context(), req.ToServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, MeResponse{User: NewUserResponse(u)})
}

// Login authenticates a user by username or email and password.
// On success, it returns a JWT access token and the user profile.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "user not found"})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), auth.GetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List retrieves a paginated list of users. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := user.UserFilter{
		Search:   req.Search,
		Role:     user.Role(req.Role),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Create(c.Request.Context(), user.CreateRequest{
		RegisterRequest: req.RegisterRequest.ToServiceRequest(),
		Role:            user.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Update(c.Request.Context(), uri.ID, req.ToServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), req.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
