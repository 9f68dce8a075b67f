package acadbond_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	acadbond "github.com/acadbond/acadbond"
)

func setupRepoManager(t *testing.T) (acadbond.RepositoryManager, func()) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, acadbond.RunMigrations(context.Background(), db))

	cleanup := func() {
		_ = db.Close()
		_ = sqldb.Close()
	}

	return acadbond.NewRepositoryManager(db), cleanup
}

func seedUser(t *testing.T, repo acadbond.RepositoryManager, email string, role acadbond.UserRole) *acadbond.User {
	t.Helper()

	hash, err := acadbond.HashPassword("longEnough1!")
	require.NoError(t, err)

	user, err := repo.Users().Register(context.Background(), &acadbond.User{
		Email:        email,
		PasswordHash: hash,
		UserType:     role,
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestUsersRegisterAssignsID(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	user := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)
	assert.NotEmpty(t, user.ID)
}

func TestUsersGetByIdentifier(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	seeded := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)
	ctx := context.Background()

	byEmail, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byEmail.ID)

	byID, err := repo.Users().GetByIdentifier(ctx, seeded.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	_, err = repo.Users().GetByIdentifier(ctx, "nobody@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersVerifyTokenLifecycle(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)

	token, err := acadbond.NewOneTimeToken()
	require.NoError(t, err)

	_, err = repo.Users().SetVerifyToken(ctx, user.ID, token, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	verified, err := repo.Users().ConsumeVerifyToken(ctx, token, time.Now())
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Nil(t, verified.VerifyToken)
	assert.Nil(t, verified.VerifyTokenExpiry)

	// single use: the second consumption must fail
	_, err = repo.Users().ConsumeVerifyToken(ctx, token, time.Now())
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))
}

func TestUsersConsumeVerifyTokenExpired(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)

	token, err := acadbond.NewOneTimeToken()
	require.NoError(t, err)

	_, err = repo.Users().SetVerifyToken(ctx, user.ID, token, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = repo.Users().ConsumeVerifyToken(ctx, token, time.Now())
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))
}

func TestUsersConsumeVerifyTokenUnknown(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	_, err := repo.Users().ConsumeVerifyToken(context.Background(), "never-issued", time.Now())
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))

	_, err = repo.Users().ConsumeVerifyToken(context.Background(), "", time.Now())
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))
}

func TestUsersResetTokenLifecycle(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)
	oldHash := user.PasswordHash

	token, err := acadbond.NewOneTimeToken()
	require.NoError(t, err)

	_, err = repo.Users().SetResetToken(ctx, "ada@example.com", token, time.Now().Add(time.Hour))
	require.NoError(t, err)

	newHash, err := acadbond.HashPassword("brandNewPass2@")
	require.NoError(t, err)

	updated, err := repo.Users().ConsumeResetToken(ctx, token, newHash, time.Now())
	require.NoError(t, err)
	assert.Equal(t, newHash, updated.PasswordHash)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.Nil(t, updated.ResetToken)
	assert.Nil(t, updated.ResetTokenExpiry)

	_, err = repo.Users().ConsumeResetToken(ctx, token, newHash, time.Now())
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))
}

func TestUsersSetResetTokenUnknownEmail(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	_, err := repo.Users().SetResetToken(context.Background(), "nobody@example.com", "tok", time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestUsersConsumeResetTokenConcurrent(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)

	token, err := acadbond.NewOneTimeToken()
	require.NoError(t, err)

	_, err = repo.Users().SetResetToken(ctx, "ada@example.com", token, time.Now().Add(time.Hour))
	require.NoError(t, err)

	hash, err := acadbond.HashPassword("brandNewPass2@")
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Users().ConsumeResetToken(ctx, token, hash, time.Now())
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, goerrors.Is(err, acadbond.ErrInvalidOrExpiredToken))
		}
	}

	// compare-and-clear admits exactly one winner
	assert.Equal(t, 1, succeeded)
}

func TestUsersTrackLogins(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, repo, "ada@example.com", acadbond.RoleStudent)

	require.NoError(t, repo.Users().TrackAttemptedLogin(ctx, user))

	reloaded, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.LoginAttempts)
	assert.NotNil(t, reloaded.LoginAttemptAt)

	require.NoError(t, repo.Users().TrackSuccessfulLogin(ctx, reloaded))

	reloaded, err = repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.LoginAttempts)
	assert.Nil(t, reloaded.LoginAttemptAt)
	assert.NotNil(t, reloaded.LoggedInAt)
}
