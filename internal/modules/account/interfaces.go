package account

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository — only the methods the account service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateNames(ctx context.Context, id uuid.UUID, fields map[string]any) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateLastLoginTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, t time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB // login commits last_login and the ledger row together
}

// TokenLedger — storage for the refresh-token revocation ledger.
type TokenLedger interface {
	Create(ctx context.Context, rec *domain.RefreshTokenRecord) error
	CreateTx(ctx context.Context, tx *gorm.DB, rec *domain.RefreshTokenRecord) error
	Get(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error)
	Blacklist(ctx context.Context, jti string, at time.Time) (bool, error)
	BlacklistAllForUser(ctx context.Context, userUUID uuid.UUID, at time.Time) (int64, error)
}
