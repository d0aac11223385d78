// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// # Revocation List

// RedisRevocationList implements [RevocationList] with one expiring key per session.
type RedisRevocationList struct {
	client redis.UniversalClient
}

// NewRevocationList creates a Redis-backed revocation list.
func NewRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func revokedSessionKey(sessionID string) string {
	return constants.RedisPrefixRevokedSession + sessionID
}

/*
MarkRevoked writes the marker for sessionID.

Description: A non-positive ttl means the session can no longer be refreshed
anyway, so nothing is written.
*/
func (list *RedisRevocationList) MarkRevoked(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := revokedSessionKey(sessionID)
	if err := list.client.Set(ctx, key, key, ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_mark_failed: %w", err)
	}

	return nil
}

// IsRevoked reports whether a marker exists for sessionID.
func (list *RedisRevocationList) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	count, err := list.client.Exists(ctx, revokedSessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_lookup_failed: %w", err)
	}

	return count > 0, nil
}

// # Pending Signups

// RedisPendingSignupRepository implements [PendingSignupRepository] as JSON values keyed by email.
type RedisPendingSignupRepository struct {
	client redis.UniversalClient
}

// NewPendingSignupRepository creates a Redis-backed pending signup store.
func NewPendingSignupRepository(client redis.UniversalClient) *RedisPendingSignupRepository {
	return &RedisPendingSignupRepository{client: client}
}

func pendingSignupKey(email string) string {
	return constants.RedisPrefixEmailVerification + strings.ToLower(email)
}

/*
Save stores the pending record, replacing a previous attempt for the same email.

Parameters:
  - ctx: context.Context
  - pending: record to store
  - ttl: lifetime of the verification code
*/
func (repository *RedisPendingSignupRepository) Save(ctx context.Context, pending *PendingSignup, ttl time.Duration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("redis_pending_signup_encode_failed: %w", err)
	}

	if err := repository.client.Set(ctx, pendingSignupKey(pending.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_pending_signup_set_failed: %w", err)
	}

	return nil
}

/*
Find loads the pending record for email.

Returns:
  - *PendingSignup: decoded record
  - error: [ErrPendingSignupNotFound] when absent or expired
*/
func (repository *RedisPendingSignupRepository) Find(ctx context.Context, email string) (*PendingSignup, error) {
	payload, err := repository.client.Get(ctx, pendingSignupKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingSignupNotFound
		}
		return nil, fmt.Errorf("redis_pending_signup_get_failed: %w", err)
	}

	pending := &PendingSignup{}
	if err := json.Unmarshal(payload, pending); err != nil {
		return nil, fmt.Errorf("redis_pending_signup_decode_failed: %w", err)
	}

	return pending, nil
}

// Delete removes the pending record for email.
func (repository *RedisPendingSignupRepository) Delete(ctx context.Context, email string) error {
	if err := repository.client.Del(ctx, pendingSignupKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_pending_signup_delete_failed: %w", err)
	}

	return nil
}
