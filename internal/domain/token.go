package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenRecord is the revocation ledger entry for one issued refresh
// token, keyed by the token's jti claim.
//
// Every issued refresh token gets a row here. Blacklisting is monotonic:
// BlacklistedAt is set exactly once (rotation, logout, or account deletion)
// and a blacklisted jti is never accepted again, even while the token is
// cryptographically valid.
type RefreshTokenRecord struct {
	JTI string `json:"jti" gorm:"primaryKey;size:36"`

	UserUUID uuid.UUID `json:"user_uuid" gorm:"type:uuid;index;not null"`

	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"index;not null"`
	BlacklistedAt *time.Time `json:"blacklisted_at" gorm:"index"`
}

func (RefreshTokenRecord) TableName() string { return "refresh_tokens" }

func (t *RefreshTokenRecord) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

func (t *RefreshTokenRecord) IsBlacklisted() bool {
	return t.BlacklistedAt != nil
}
