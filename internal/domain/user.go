package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account record. The numeric ID is a storage surrogate;
// tokens and API handlers reference accounts by UUID only, so identity
// fields can change without invalidating issued tokens.
type User struct {
	ID   int64     `json:"-" gorm:"primaryKey"`
	UUID uuid.UUID `json:"-" gorm:"column:uuid;type:uuid;uniqueIndex;not null"`

	Username string  `json:"username" gorm:"size:60;uniqueIndex;not null"`
	Email    string  `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Phone    *string `json:"phone,omitempty" gorm:"size:20;uniqueIndex"`

	FirstName  *string `json:"first_name,omitempty" gorm:"size:100"`
	LastName   *string `json:"last_name,omitempty" gorm:"size:100"`
	MiddleName *string `json:"middle_name,omitempty" gorm:"size:100"`

	PasswordHash string `json:"-" gorm:"size:100;not null"`

	IsActive    bool `json:"is_active" gorm:"default:true"`
	IsStaff     bool `json:"is_staff"`
	IsSuperuser bool `json:"is_superuser"`

	DateJoined time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin  *time.Time `json:"last_login"`
}

func (User) TableName() string { return "users" }

// FullName joins the non-empty name parts in "first last middle" order.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{u.FirstName, u.LastName, u.MiddleName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " ")
}
