package account

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSamePassword       = errors.New("new password matches the current one")
	ErrTokenBlacklisted   = errors.New("token is blacklisted")
)
