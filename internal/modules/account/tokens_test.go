package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"accounts/internal/database"
	"accounts/internal/domain"
	"accounts/internal/pkg/jwt"
	"accounts/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockLedger) CreateTx(ctx context.Context, tx *gorm.DB, rec *domain.RefreshTokenRecord) error {
	args := m.Called(ctx, tx, rec)
	return args.Error(0)
}

func (m *mockLedger) Get(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	args := m.Called(ctx, jti)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshTokenRecord), args.Error(1)
}

func (m *mockLedger) Blacklist(ctx context.Context, jti string, at time.Time) (bool, error) {
	args := m.Called(ctx, jti, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) BlacklistAllForUser(ctx context.Context, userUUID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, userUUID, at)
	return args.Get(0).(int64), args.Error(1)
}

func newTestSigner() *jwt.Service {
	return jwt.New("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestTokenServiceRotateUnknownJTI(t *testing.T) {
	signer := newTestSigner()
	ledger := new(mockLedger)
	svc := NewTokenService(signer, ledger)

	refresh, _, err := signer.Generate(jwt.TypeRefresh, uuid.New(), time.Now())
	require.NoError(t, err)

	// Signed but never recorded, e.g. minted before a ledger wipe.
	ledger.On("Blacklist", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	ledger.On("Get", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	_, err = svc.Rotate(context.Background(), refresh)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
	ledger.AssertExpectations(t)
}

func TestTokenServiceRotateBlacklisted(t *testing.T) {
	signer := newTestSigner()
	ledger := new(mockLedger)
	svc := NewTokenService(signer, ledger)

	subject := uuid.New()
	refresh, claims, err := signer.Generate(jwt.TypeRefresh, subject, time.Now())
	require.NoError(t, err)

	at := time.Now()
	ledger.On("Blacklist", mock.Anything, claims.ID, mock.Anything).Return(false, nil)
	ledger.On("Get", mock.Anything, claims.ID).Return(&domain.RefreshTokenRecord{
		JTI:           claims.ID,
		UserUUID:      subject,
		ExpiresAt:     time.Now().Add(time.Hour),
		BlacklistedAt: &at,
	}, nil)

	_, err = svc.Rotate(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
}

func TestTokenServiceRotateRejectsAccessToken(t *testing.T) {
	signer := newTestSigner()
	svc := NewTokenService(signer, new(mockLedger))

	access, _, err := signer.Generate(jwt.TypeAccess, uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), access)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestTokenServiceRevokeIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenService(newTestSigner(), repository.NewTokenRepository(db))
	ctx := context.Background()

	pair, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.Refresh))
	require.NoError(t, svc.Revoke(ctx, pair.Refresh))

	_, err = svc.Rotate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
}

func TestTokenServiceRotateOldTokenDies(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenService(newTestSigner(), repository.NewTokenRepository(db))
	ctx := context.Background()

	first, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	second, err := svc.Rotate(ctx, first.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, first.Refresh, second.Refresh)

	_, err = svc.Rotate(ctx, first.Refresh)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	_, err = svc.Rotate(ctx, second.Refresh)
	assert.NoError(t, err)
}

func TestTokenServiceConcurrentRotateOneWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenService(newTestSigner(), repository.NewTokenRepository(db))
	ctx := context.Background()

	pair, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Rotate(ctx, pair.Refresh)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrTokenBlacklisted)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestTokenServiceAuthenticate(t *testing.T) {
	signer := newTestSigner()
	svc := NewTokenService(signer, new(mockLedger))
	subject := uuid.New()

	access, _, err := signer.Generate(jwt.TypeAccess, subject, time.Now())
	require.NoError(t, err)

	got, err := svc.Authenticate(access)
	require.NoError(t, err)
	assert.Equal(t, subject, got)

	refresh, _, err := signer.Generate(jwt.TypeRefresh, subject, time.Now())
	require.NoError(t, err)
	_, err = svc.Authenticate(refresh)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestTokenServiceVerify(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenService(newTestSigner(), repository.NewTokenRepository(db))
	ctx := context.Background()

	pair, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	assert.NoError(t, svc.Verify(ctx, pair.Access))
	assert.NoError(t, svc.Verify(ctx, pair.Refresh))

	require.NoError(t, svc.Revoke(ctx, pair.Refresh))
	assert.ErrorIs(t, svc.Verify(ctx, pair.Refresh), ErrTokenBlacklisted)
	assert.NoError(t, svc.Verify(ctx, pair.Access))

	assert.ErrorIs(t, svc.Verify(ctx, "garbage"), jwt.ErrTokenInvalid)
}

func TestTokenServiceRevokeAllForUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewTokenService(newTestSigner(), repository.NewTokenRepository(db))
	ctx := context.Background()

	subject := uuid.New()
	a, err := svc.Issue(ctx, subject)
	require.NoError(t, err)
	b, err := svc.Issue(ctx, subject)
	require.NoError(t, err)

	other, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForUser(ctx, subject))

	_, err = svc.Rotate(ctx, a.Refresh)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
	_, err = svc.Rotate(ctx, b.Refresh)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
	_, err = svc.Rotate(ctx, other.Refresh)
	assert.NoError(t, err)
}
