package account

import (
	"context"
	"errors"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Compared against when the email is unknown, so a probe cannot tell
// "no such account" from "wrong password" by response time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service contains the account lifecycle business logic.
type Service struct {
	users  UserRepository
	tokens *TokenService
}

func NewService(users UserRepository, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// AuthResult is an account plus a freshly issued pair.
type AuthResult struct {
	User   *domain.User
	Tokens *TokenPair
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		UUID:         uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MiddleName:   req.MiddleName,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Login verifies email+password and issues a pair. The last_login
// update and the ledger row commit in one transaction; a failed login
// changes nothing.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	var pair *TokenPair
	err = s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.UpdateLastLoginTx(ctx, tx, user.UUID, now); err != nil {
			return err
		}
		var issueErr error
		pair, issueErr = s.tokens.IssueTx(ctx, tx, user.UUID)
		return issueErr
	})
	if err != nil {
		return nil, err
	}

	user.LastLogin = &now
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *Service) Logout(ctx context.Context, refresh string) error {
	return s.tokens.Revoke(ctx, refresh)
}

func (s *Service) Refresh(ctx context.Context, refresh string) (*TokenPair, error) {
	return s.tokens.Rotate(ctx, refresh)
}

func (s *Service) Verify(ctx context.Context, token string) error {
	return s.tokens.Verify(ctx, token)
}

// Profile returns the account together with a fresh pair, matching the
// mobile clients that treat every profile fetch as a session refresh.
func (s *Service) Profile(ctx context.Context, userUUID uuid.UUID) (*AuthResult, error) {
	user, err := s.users.GetByUUID(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Issue(ctx, user.UUID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

// UpdateProfile changes name fields only. Absent fields stay untouched.
func (s *Service) UpdateProfile(ctx context.Context, userUUID uuid.UUID, req UpdateProfileRequest) (*AuthResult, error) {
	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.MiddleName != nil {
		fields["middle_name"] = *req.MiddleName
	}

	if err := s.users.UpdateNames(ctx, userUUID, fields); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userUUID)
}

// ChangePassword verifies the current password before anything else,
// then refuses a no-op change. Outstanding tokens stay valid.
func (s *Service) ChangePassword(ctx context.Context, userUUID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.users.GetByUUID(ctx, userUUID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if req.NewPassword == req.OldPassword {
		return ErrSamePassword
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userUUID, hash)
}

// Delete removes the account and blacklists every refresh token it
// still has outstanding.
func (s *Service) Delete(ctx context.Context, userUUID uuid.UUID) error {
	if err := s.users.Delete(ctx, userUUID); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, userUUID)
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
