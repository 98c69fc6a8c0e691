package repository

import (
	"context"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository is DB access for the refresh-token revocation ledger.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// CreateTx writes the ledger row through an outer transaction.
func (r *TokenRepository) CreateTx(ctx context.Context, tx *gorm.DB, rec *domain.RefreshTokenRecord) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *TokenRepository) Get(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	var rec domain.RefreshTokenRecord
	err := r.db.WithContext(ctx).Where("jti = ?", jti).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Blacklist marks a jti revoked. The NULL guard makes it a
// single-winner operation: under concurrent rotation exactly one caller
// sees updated=true, everyone else finds the row already blacklisted.
func (r *TokenRepository) Blacklist(ctx context.Context, jti string, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.RefreshTokenRecord{}).
		Where("jti = ? AND blacklisted_at IS NULL", jti).
		Update("blacklisted_at", at)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// BlacklistAllForUser revokes every outstanding token of one subject.
func (r *TokenRepository) BlacklistAllForUser(ctx context.Context, userUUID uuid.UUID, at time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.RefreshTokenRecord{}).
		Where("user_uuid = ? AND blacklisted_at IS NULL", userUUID).
		Update("blacklisted_at", at)
	return tx.RowsAffected, tx.Error
}

// DeleteExpired removes rows whose tokens can no longer verify anyway.
// Expiry is compared against the passed time, not the DB clock, so the
// same query runs on postgres and sqlite.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.RefreshTokenRecord{})
	return tx.RowsAffected, tx.Error
}

// DeleteBlacklistedBefore removes long-revoked rows to keep the ledger
// bounded.
func (r *TokenRepository) DeleteBlacklistedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("blacklisted_at IS NOT NULL AND blacklisted_at < ?", cutoff).
		Delete(&domain.RefreshTokenRecord{})
	return tx.RowsAffected, tx.Error
}
