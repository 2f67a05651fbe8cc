package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/infrastructure/cache"
)

func newDraftCache(t *testing.T) (*cache.RedisSignupDraftCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisSignupDraftCache(client, time.Hour), mr
}

func testProfile() *models.ProfileForm {
	return &models.ProfileForm{
		LastName:           "山田",
		FirstName:          "太郎",
		LastKanaName:       "ヤマダ",
		FirstKanaName:      "タロウ",
		BirthDate:          "1990-04-01",
		GenderCode:         models.GenderCodeMale,
		HomePostalCode:     "1000001",
		HomePrefectureCode: 13,
		EmploymentStatus:   models.EmploymentStatusUnemployed,
	}
}

func TestDraftRoundTrip(t *testing.T) {
	c, _ := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok", "$argon2id$hash"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))
	require.NoError(t, c.StoreLoginChallenge(ctx, "tok", "chal-1"))

	draft, err := c.ReadAll(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$hash", draft.EncryptedPassword)
	assert.Equal(t, "山田", draft.Profile.LastName)
	assert.Equal(t, "chal-1", draft.LoginChallenge)
}

func TestReadAllWithoutChallenge(t *testing.T) {
	c, _ := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok", "$argon2id$hash"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))

	draft, err := c.ReadAll(ctx, "tok")
	require.NoError(t, err)
	assert.Empty(t, draft.LoginChallenge)
}

func TestReadAllIncompleteDraft(t *testing.T) {
	c, _ := newDraftCache(t)
	ctx := context.Background()

	_, err := c.ReadAll(ctx, "tok")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)

	// Password alone is not enough.
	require.NoError(t, c.StorePassword(ctx, "tok", "$argon2id$hash"))
	_, err = c.ReadAll(ctx, "tok")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)

	// Profile alone is not enough either.
	require.NoError(t, c.DeleteAll(ctx, "tok"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))
	_, err = c.ReadAll(ctx, "tok")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)
}

func TestRestagingOverwrites(t *testing.T) {
	c, _ := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok", "first"))
	require.NoError(t, c.StorePassword(ctx, "tok", "second"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))

	draft, err := c.ReadAll(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "second", draft.EncryptedPassword)
}

func TestDeleteAllRemovesEveryKey(t *testing.T) {
	c, mr := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok", "$argon2id$hash"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))
	require.NoError(t, c.StoreLoginChallenge(ctx, "tok", "chal-1"))

	require.NoError(t, c.DeleteAll(ctx, "tok"))

	assert.Empty(t, mr.Keys())
	_, err := c.ReadAll(ctx, "tok")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)
}

func TestDraftExpires(t *testing.T) {
	c, mr := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok", "$argon2id$hash"))
	require.NoError(t, c.StoreProfile(ctx, "tok", testProfile()))

	mr.FastForward(2 * time.Hour)

	_, err := c.ReadAll(ctx, "tok")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)
}

func TestDraftsAreIsolatedByToken(t *testing.T) {
	c, _ := newDraftCache(t)
	ctx := context.Background()

	require.NoError(t, c.StorePassword(ctx, "tok-a", "hash-a"))
	require.NoError(t, c.StoreProfile(ctx, "tok-a", testProfile()))

	_, err := c.ReadAll(ctx, "tok-b")
	assert.ErrorIs(t, err, errors.ErrDraftIncomplete)
}
