package account

import (
	"errors"
	"net/http"

	"accounts/internal/domain"
	"accounts/internal/pkg/jwt"
	"accounts/internal/pkg/response"
	"accounts/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handler manages all HTTP interactions for accounts and sessions.
type Handler struct {
	service *Service
	authn   *Authenticator
}

func NewHandler(service *Service, authn *Authenticator) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/login/refresh", h.Refresh)
		auth.POST("/login/verify", h.Verify)
		auth.POST("/logout", h.Logout)
		auth.POST("/password/change", h.ChangePassword)
		auth.GET("/profile", h.Profile)
		auth.PATCH("/profile", h.UpdateProfile)
		auth.DELETE("/profile", h.DeleteProfile)
	}
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		var dup *domain.DuplicateIdentityError
		if errors.As(err, &dup) {
			response.ErrorWithDetails(c, http.StatusConflict, "DUPLICATE",
				"Value is already taken", gin.H{dup.Field: dup.Error()})
			return
		}
		response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create account")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":   NewUserView(result.User),
		"tokens": result.Tokens,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "AUTHENTICATION_FAILED",
				"No active account found with the given credentials")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   NewUserView(result.User),
		"tokens": result.Tokens,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tokens": pair})
}

func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	if err := h.service.Verify(c.Request.Context(), req.Token); err != nil {
		h.tokenError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Token is valid"})
}

func (h *Handler) Logout(c *gin.Context) {
	if _, ok := h.requireAuth(c); !ok {
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.Refresh); err != nil {
		h.tokenError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userUUID, ok := h.requireAuth(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userUUID, req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect")
		case errors.Is(err, ErrSamePassword):
			response.Error(c, http.StatusConflict, "SAME_VALUE", "New password must differ from the current one")
		default:
			response.Error(c, http.StatusInternalServerError, "PASSWORD_CHANGE_FAILED", "Failed to change password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed"})
}

func (h *Handler) Profile(c *gin.Context) {
	userUUID, ok := h.requireAuth(c)
	if !ok {
		return
	}

	result, err := h.service.Profile(c.Request.Context(), userUUID)
	if err != nil {
		h.profileError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   NewUserView(result.User),
		"tokens": result.Tokens,
	})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userUUID, ok := h.requireAuth(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, validator.BindingErrors(err))
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), userUUID, req)
	if err != nil {
		h.profileError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   NewUserView(result.User),
		"tokens": result.Tokens,
	})
}

func (h *Handler) DeleteProfile(c *gin.Context) {
	userUUID, ok := h.requireAuth(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userUUID); err != nil {
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

// requireAuth resolves the request's auth state and writes the 401
// itself when the operation cannot proceed.
func (h *Handler) requireAuth(c *gin.Context) (uuid.UUID, bool) {
	switch state := h.authn.StateOf(c.Request).(type) {
	case Authenticated:
		return state.UserUUID, true
	case Rejected:
		h.tokenError(c, state.Reason)
		return uuid.Nil, false
	default:
		response.Error(c, http.StatusUnauthorized, "CREDENTIALS_MISSING",
			"Authentication credentials were not provided.")
		return uuid.Nil, false
	}
}

func (h *Handler) tokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTokenBlacklisted):
		response.Error(c, http.StatusUnauthorized, "TOKEN_BLACKLISTED", "Token is blacklisted")
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token is invalid or expired")
	case errors.Is(err, jwt.ErrTokenInvalid):
		response.Error(c, http.StatusUnauthorized, "TOKEN_INVALID", "Token is invalid or expired")
	default:
		response.Error(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to process token")
	}
}

// profileError covers the token-outlives-account race: a valid access
// token whose subject no longer exists reads as failed authentication,
// not as a server error.
func (h *Handler) profileError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Error(c, http.StatusUnauthorized, "USER_NOT_FOUND", "User not found")
		return
	}
	response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to load profile")
}
