package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
)

const profileCacheKeyPrefix = "tasker_profile:"

// Cached profiles outlive drafts; they refresh on every successful
// submission anyway.
const profileCacheTTL = 7 * 24 * time.Hour

type redisProfileCache struct {
	rdb *redis.Client
}

func NewRedisProfileCache(rdb *redis.Client) profile.Cache {
	return &redisProfileCache{rdb: rdb}
}

func (c *redisProfileCache) Set(ctx context.Context, p *profile.TaskerProfile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return apperror.NewInternal("failed to marshal tasker profile", err)
	}
	key := profileCacheKeyPrefix + p.WorkerID.String()
	if err := c.rdb.Set(ctx, key, payload, profileCacheTTL).Err(); err != nil {
		return apperror.NewInternal("failed to cache tasker profile", err)
	}
	return nil
}

func (c *redisProfileCache) Get(ctx context.Context, workerID uuid.UUID) (*profile.TaskerProfile, error) {
	data, err := c.rdb.Get(ctx, profileCacheKeyPrefix+workerID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("tasker profile", workerID.String())
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to read cached tasker profile", err)
	}

	var p profile.TaskerProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal cached tasker profile", err)
	}
	return &p, nil
}
