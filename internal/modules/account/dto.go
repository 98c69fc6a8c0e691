package account

import (
	"time"

	"accounts/internal/domain"
)

type SignupRequest struct {
	Username   string  `json:"username" binding:"required,min=2,max=60"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,e164"`
	Password   string  `json:"password" binding:"required,min=8,max=100"`
	FirstName  *string `json:"first_name,omitempty" binding:"omitempty,min=2,max=100"`
	LastName   *string `json:"last_name,omitempty" binding:"omitempty,min=2,max=100"`
	MiddleName *string `json:"middle_name,omitempty" binding:"omitempty,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=100"`
}

type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name,omitempty" binding:"omitempty,min=2,max=100"`
	LastName   *string `json:"last_name,omitempty" binding:"omitempty,min=2,max=100"`
	MiddleName *string `json:"middle_name,omitempty" binding:"omitempty,min=2,max=100"`
}

// UserView is the account as the API shows it. Password material and
// storage identifiers never appear here.
type UserView struct {
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	MiddleName  *string    `json:"middle_name,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		MiddleName:  u.MiddleName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
		LastLogin:   u.LastLogin,
	}
}
