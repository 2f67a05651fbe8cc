package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/nagashima/sso-idp/internal/domain/errors"
	"github.com/nagashima/sso-idp/internal/domain/models"
	"github.com/nagashima/sso-idp/internal/domain/repository"
)

const (
	draftKeyPassword       = "password"
	draftKeyProfile        = "profile"
	draftKeyLoginChallenge = "login_challenge"
)

// RedisSignupDraftCache stages registration data in redis under
// signup:<token>:<field> keys, each with the draft TTL.
type RedisSignupDraftCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ repository.SignupDraftCache = (*RedisSignupDraftCache)(nil)

func NewRedisSignupDraftCache(client *redis.Client, ttl time.Duration) *RedisSignupDraftCache {
	return &RedisSignupDraftCache{client: client, ttl: ttl}
}

func draftKey(token, field string) string {
	return fmt.Sprintf("signup:%s:%s", token, field)
}

func (c *RedisSignupDraftCache) StorePassword(ctx context.Context, token, encryptedPassword string) error {
	if err := c.client.Set(ctx, draftKey(token, draftKeyPassword), encryptedPassword, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft password: %w", err)
	}
	return nil
}

func (c *RedisSignupDraftCache) StoreProfile(ctx context.Context, token string, profile *models.ProfileForm) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal draft profile: %w", err)
	}
	if err := c.client.Set(ctx, draftKey(token, draftKeyProfile), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft profile: %w", err)
	}
	return nil
}

func (c *RedisSignupDraftCache) StoreLoginChallenge(ctx context.Context, token, challenge string) error {
	if err := c.client.Set(ctx, draftKey(token, draftKeyLoginChallenge), challenge, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft login challenge: %w", err)
	}
	return nil
}

func (c *RedisSignupDraftCache) ReadAll(ctx context.Context, token string) (*repository.SignupDraft, error) {
	password, err := c.client.Get(ctx, draftKey(token, draftKeyPassword)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrDraftIncomplete
		}
		return nil, fmt.Errorf("failed to read draft password: %w", err)
	}

	profileRaw, err := c.client.Get(ctx, draftKey(token, draftKeyProfile)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrDraftIncomplete
		}
		return nil, fmt.Errorf("failed to read draft profile: %w", err)
	}

	var profile models.ProfileForm
	if err := json.Unmarshal(profileRaw, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft profile: %w", err)
	}

	// The login challenge is only present for flows initiated by the
	// authorization server.
	challenge, err := c.client.Get(ctx, draftKey(token, draftKeyLoginChallenge)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read draft login challenge: %w", err)
	}

	return &repository.SignupDraft{
		EncryptedPassword: password,
		Profile:           &profile,
		LoginChallenge:    challenge,
	}, nil
}

func (c *RedisSignupDraftCache) DeleteAll(ctx context.Context, token string) error {
	keys := []string{
		draftKey(token, draftKeyPassword),
		draftKey(token, draftKeyProfile),
		draftKey(token, draftKeyLoginChallenge),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete signup draft: %w", err)
	}
	return nil
}
