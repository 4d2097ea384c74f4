package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
)

// The first mobile release stored the step pointer under its own key, apart
// from the payload blob. The server-side store keeps that two-entry layout,
// suffixed with the worker ID.
const (
	draftDataKeyPrefix = "onboarding_draft_data:"
	draftStepKeyPrefix = "onboarding_draft_step:"
)

type redisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) onboarding.DraftStore {
	return &redisDraftStore{rdb: rdb, ttl: ttl}
}

func draftDataKey(workerID uuid.UUID) string { return draftDataKeyPrefix + workerID.String() }
func draftStepKey(workerID uuid.UUID) string { return draftStepKeyPrefix + workerID.String() }

func (s *redisDraftStore) SaveData(ctx context.Context, workerID uuid.UUID, r onboarding.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return apperror.NewInternal("failed to marshal onboarding draft", err)
	}
	if err := s.rdb.Set(ctx, draftDataKey(workerID), payload, s.ttl).Err(); err != nil {
		return apperror.NewInternal("failed to write onboarding draft payload", err)
	}
	return nil
}

func (s *redisDraftStore) SaveStep(ctx context.Context, workerID uuid.UUID, step int) error {
	if err := s.rdb.Set(ctx, draftStepKey(workerID), strconv.Itoa(step), s.ttl).Err(); err != nil {
		return apperror.NewInternal("failed to write onboarding draft step", err)
	}
	return nil
}

func (s *redisDraftStore) Load(ctx context.Context, workerID uuid.UUID) (onboarding.Record, error) {
	data, err := s.rdb.Get(ctx, draftDataKey(workerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return onboarding.Record{}, onboarding.ErrDraftNotFound
	}
	if err != nil {
		return onboarding.Record{}, apperror.NewInternal("failed to read onboarding draft payload", err)
	}

	r := onboarding.NewRecord()
	if err := json.Unmarshal(data, &r); err != nil {
		return onboarding.Record{}, apperror.NewInternal("failed to unmarshal onboarding draft", err)
	}

	// The step pointer lives under its own key; a missing or mangled value
	// falls back to step one rather than failing the whole resume.
	r.CurrentStep = onboarding.StepBasicInfo
	if raw, err := s.rdb.Get(ctx, draftStepKey(workerID)).Result(); err == nil {
		if step, convErr := strconv.Atoi(raw); convErr == nil && step >= 1 && step <= onboarding.TotalSteps {
			r.CurrentStep = step
		}
	}

	return r, nil
}

func (s *redisDraftStore) Clear(ctx context.Context, workerID uuid.UUID) error {
	if err := s.rdb.Del(ctx, draftDataKey(workerID), draftStepKey(workerID)).Err(); err != nil {
		return apperror.NewInternal("failed to clear onboarding draft", err)
	}
	return nil
}
