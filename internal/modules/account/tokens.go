package account

import (
	"context"
	"errors"
	"time"

	"accounts/internal/domain"
	"accounts/internal/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenPair is one access/refresh issuance. Both tokens share the same
// issuance instant; the refresh jti is recorded in the ledger.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues, rotates and revokes token pairs. Access tokens
// stay stateless; refresh tokens live and die through the ledger.
type TokenService struct {
	signer *jwt.Service
	ledger TokenLedger
}

func NewTokenService(signer *jwt.Service, ledger TokenLedger) *TokenService {
	return &TokenService{signer: signer, ledger: ledger}
}

func (t *TokenService) Issue(ctx context.Context, userUUID uuid.UUID) (*TokenPair, error) {
	return t.issue(ctx, nil, userUUID)
}

// IssueTx issues a pair writing the ledger row through an outer
// transaction, so the caller's own writes and the issuance commit or
// roll back as one.
func (t *TokenService) IssueTx(ctx context.Context, tx *gorm.DB, userUUID uuid.UUID) (*TokenPair, error) {
	return t.issue(ctx, tx, userUUID)
}

func (t *TokenService) issue(ctx context.Context, tx *gorm.DB, userUUID uuid.UUID) (*TokenPair, error) {
	now := time.Now().UTC()

	access, _, err := t.signer.Generate(jwt.TypeAccess, userUUID, now)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := t.signer.Generate(jwt.TypeRefresh, userUUID, now)
	if err != nil {
		return nil, err
	}

	rec := &domain.RefreshTokenRecord{
		JTI:       claims.ID,
		UserUUID:  userUUID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if tx != nil {
		err = t.ledger.CreateTx(ctx, tx, rec)
	} else {
		err = t.ledger.Create(ctx, rec)
	}
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Rotate trades a live refresh token for a fresh pair. The presented
// token is blacklisted first; only the caller that wins the blacklist
// update gets the new pair, so a stolen-and-replayed token can never
// yield two live sessions from one ancestor.
func (t *TokenService) Rotate(ctx context.Context, refresh string) (*TokenPair, error) {
	claims, err := t.signer.Parse(refresh, jwt.TypeRefresh)
	if err != nil {
		return nil, err
	}

	updated, err := t.ledger.Blacklist(ctx, claims.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !updated {
		if _, err := t.ledger.Get(ctx, claims.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, jwt.ErrTokenInvalid
			}
			return nil, err
		}
		return nil, ErrTokenBlacklisted
	}

	return t.issue(ctx, nil, claims.UserUUID())
}

// Revoke blacklists a refresh token without replacement (logout).
// Revoking an already-blacklisted token succeeds.
func (t *TokenService) Revoke(ctx context.Context, refresh string) error {
	claims, err := t.signer.Parse(refresh, jwt.TypeRefresh)
	if err != nil {
		return err
	}

	updated, err := t.ledger.Blacklist(ctx, claims.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		if _, err := t.ledger.Get(ctx, claims.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return jwt.ErrTokenInvalid
			}
			return err
		}
	}
	return nil
}

// RevokeAllForUser blacklists every outstanding refresh token of one
// subject (account deletion).
func (t *TokenService) RevokeAllForUser(ctx context.Context, userUUID uuid.UUID) error {
	_, err := t.ledger.BlacklistAllForUser(ctx, userUUID, time.Now().UTC())
	return err
}

// Authenticate checks an access token without touching storage.
func (t *TokenService) Authenticate(access string) (uuid.UUID, error) {
	claims, err := t.signer.Parse(access, jwt.TypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserUUID(), nil
}

// Verify checks a token of either type (the verify endpoint accepts
// both). A refresh token must additionally still be live in the ledger.
func (t *TokenService) Verify(ctx context.Context, token string) error {
	claims, err := t.signer.ParseAny(token)
	if err != nil {
		return err
	}
	if claims.TokenType != jwt.TypeRefresh {
		return nil
	}

	rec, err := t.ledger.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jwt.ErrTokenInvalid
		}
		return err
	}
	if rec.IsBlacklisted() {
		return ErrTokenBlacklisted
	}
	return nil
}
