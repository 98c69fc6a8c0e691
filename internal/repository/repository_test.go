package repository

import (
	"context"
	"testing"
	"time"

	"accounts/internal/database"
	"accounts/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	// In-memory sqlite gives each pooled connection its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newUser(username, email string) *domain.User {
	return &domain.User{
		UUID:         uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$stub",
		IsActive:     true,
	}
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ayan", "Ayan@Example.COM")
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "ayan@example.com", u.Email)

	got, err := repo.GetByEmail(ctx, "AYAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.UUID, got.UUID)

	got, err = repo.GetByUsername(ctx, "ayan")
	require.NoError(t, err)
	assert.Equal(t, u.UUID, got.UUID)

	got, err = repo.GetByUUID(ctx, u.UUID)
	require.NoError(t, err)
	assert.Equal(t, "ayan", got.Username)

	exists, err := repo.ExistsByEmail(ctx, "ayan@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryDuplicateFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	phone := "+77010000001"
	first := newUser("ayan", "ayan@example.com")
	first.Phone = &phone
	require.NoError(t, repo.Create(ctx, first))

	samePhone := newUser("third", "third@example.com")
	samePhone.Phone = &phone

	cases := []struct {
		name  string
		user  *domain.User
		field string
	}{
		{"email", newUser("other", "ayan@example.com"), "email"},
		{"username", newUser("ayan", "other@example.com"), "username"},
		{"phone", samePhone, "phone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Create(ctx, tc.user)
			var dupErr *domain.DuplicateIdentityError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, tc.field, dupErr.Field)
		})
	}
}

func TestUserRepositoryUpdateNamesOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ayan", "ayan@example.com")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.UpdateNames(ctx, u.UUID, map[string]any{
		"first_name": "Ayan",
		"last_name":  "Seitkali",
	})
	require.NoError(t, err)

	got, err := repo.GetByUUID(ctx, u.UUID)
	require.NoError(t, err)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Ayan", *got.FirstName)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Seitkali", *got.LastName)
	assert.Equal(t, "ayan", got.Username)
	assert.Equal(t, "Ayan Seitkali", got.FullName())
}

func TestUserRepositoryUpdateLastLoginTx(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ayan", "ayan@example.com")
	require.NoError(t, repo.Create(ctx, u))

	at := time.Now().UTC().Truncate(time.Second)
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.UpdateLastLoginTx(ctx, tx, u.UUID, at)
	})
	require.NoError(t, err)

	got, err := repo.GetByUUID(ctx, u.UUID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, at, *got.LastLogin, time.Second)
}

func TestUserRepositoryDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := newUser("ayan", "ayan@example.com")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.Delete(ctx, u.UUID))

	_, err := repo.GetByUUID(ctx, u.UUID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func newLedgerRow(userUUID uuid.UUID, ttl time.Duration) *domain.RefreshTokenRecord {
	return &domain.RefreshTokenRecord{
		JTI:       uuid.NewString(),
		UserUUID:  userUUID,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestTokenRepositoryBlacklistSingleWinner(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	rec := newLedgerRow(uuid.New(), time.Hour)
	require.NoError(t, repo.Create(ctx, rec))

	updated, err := repo.Blacklist(ctx, rec.JTI, time.Now())
	require.NoError(t, err)
	assert.True(t, updated)

	// Second attempt finds the NULL guard already consumed.
	updated, err = repo.Blacklist(ctx, rec.JTI, time.Now())
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := repo.Get(ctx, rec.JTI)
	require.NoError(t, err)
	assert.True(t, got.IsBlacklisted())
}

func TestTokenRepositoryBlacklistUnknownJTI(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepository(db)

	updated, err := repo.Blacklist(context.Background(), uuid.NewString(), time.Now())
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestTokenRepositoryBlacklistAllForUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	target := uuid.New()
	other := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newLedgerRow(target, time.Hour)))
	}
	bystander := newLedgerRow(other, time.Hour)
	require.NoError(t, repo.Create(ctx, bystander))

	n, err := repo.BlacklistAllForUser(ctx, target, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err := repo.Get(ctx, bystander.JTI)
	require.NoError(t, err)
	assert.False(t, got.IsBlacklisted())
}

func TestTokenRepositoryPrune(t *testing.T) {
	db := newTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	user := uuid.New()
	expired := newLedgerRow(user, -time.Hour)
	live := newLedgerRow(user, time.Hour)
	stale := newLedgerRow(user, time.Hour)
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	old := time.Now().Add(-48 * time.Hour)
	stale.BlacklistedAt = &old
	require.NoError(t, db.Save(stale).Error)

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteBlacklistedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Get(ctx, live.JTI)
	assert.NoError(t, err)
}
