package persistence

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
)

// inmemDraftStore backs local development and tests. Payloads are stored
// serialized so Load always yields an independent copy, same as the durable
// backends.
type inmemDraftStore struct {
	mu    sync.RWMutex
	data  map[uuid.UUID][]byte
	steps map[uuid.UUID]int
}

func NewInmemDraftStore() onboarding.DraftStore {
	return &inmemDraftStore{
		data:  make(map[uuid.UUID][]byte),
		steps: make(map[uuid.UUID]int),
	}
}

func (s *inmemDraftStore) SaveData(ctx context.Context, workerID uuid.UUID, r onboarding.Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return apperror.NewInternal("failed to marshal onboarding draft", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[workerID] = payload
	return nil
}

func (s *inmemDraftStore) SaveStep(ctx context.Context, workerID uuid.UUID, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[workerID] = step
	return nil
}

func (s *inmemDraftStore) Load(ctx context.Context, workerID uuid.UUID) (onboarding.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[workerID]
	if !ok {
		return onboarding.Record{}, onboarding.ErrDraftNotFound
	}

	r := onboarding.NewRecord()
	if err := json.Unmarshal(payload, &r); err != nil {
		return onboarding.Record{}, apperror.NewInternal("failed to unmarshal onboarding draft", err)
	}
	if step, ok := s.steps[workerID]; ok && step >= 1 && step <= onboarding.TotalSteps {
		r.CurrentStep = step
	}
	return r, nil
}

func (s *inmemDraftStore) Clear(ctx context.Context, workerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workerID)
	delete(s.steps, workerID)
	return nil
}
