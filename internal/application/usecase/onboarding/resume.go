package onboarding

import (
	"context"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
)

// ResumeUseCase rehydrates the worker's flow on app restart. The first call
// after a restart reads the draft store once; later calls hit the in-memory
// machine.
type ResumeUseCase struct {
	manager *onboarding.Manager
}

func NewResumeUseCase(manager *onboarding.Manager) *ResumeUseCase {
	return &ResumeUseCase{manager: manager}
}

func (uc *ResumeUseCase) Execute(ctx context.Context, workerID uuid.UUID) (onboarding.Record, error) {
	m, err := uc.manager.Get(ctx, workerID)
	if err != nil {
		return onboarding.Record{}, err
	}
	return m.Snapshot(), nil
}
