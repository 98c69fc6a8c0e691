package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// DB exposes the underlying handle for multi-repo transactions
// (login updates last_login and writes the token ledger atomically).
func (r *UserRepository) DB() *gorm.DB { return r.db }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if field := duplicateField(err); field != "" {
			return &domain.DuplicateIdentityError{Field: field}
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// UpdateNames writes only the name columns passed in fields
// (first_name, last_name, middle_name). Identity columns are not
// reachable through this method.
func (r *UserRepository) UpdateNames(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", id).
		Updates(fields).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", id).
		Update("password_hash", hash).Error
}

// UpdateLastLoginTx runs inside the caller-provided transaction so the
// timestamp commits together with the issued token ledger row.
func (r *UserRepository) UpdateLastLoginTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, t time.Time) error {
	return tx.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", id).
		Update("last_login", t).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("uuid = ?", id).Delete(&domain.User{}).Error
}

// duplicateField maps a driver uniqueness violation to the offending
// column, or "" when the error is something else. Postgres reports the
// constraint name (idx_users_email and friends), sqlite names the
// column directly.
func duplicateField(err error) string {
	var msg string

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return ""
		}
		msg = pgErr.ConstraintName
	} else if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		msg = err.Error()
	} else {
		return ""
	}

	for _, field := range []string{"username", "email", "phone"} {
		if strings.Contains(msg, field) {
			return field
		}
	}
	return ""
}
