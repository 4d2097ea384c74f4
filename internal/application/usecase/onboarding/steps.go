package onboarding

import (
	"context"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
)

// StepsUseCase exposes the state machine's transition table to the transport
// layer. Each call resolves the worker's machine and dispatches one action;
// the machine itself handles draft persistence.
type StepsUseCase struct {
	manager *onboarding.Manager
}

func NewStepsUseCase(manager *onboarding.Manager) *StepsUseCase {
	return &StepsUseCase{manager: manager}
}

type UpdateBasicInfoInput struct {
	Bio   *string
	Phone *string
}

type UpdateLocationInput struct {
	Region *string
	City   *string
	Town   *string
	Street *string
}

func (uc *StepsUseCase) dispatch(ctx context.Context, workerID uuid.UUID, a onboarding.Action) (onboarding.Record, bool, error) {
	m, err := uc.manager.Get(ctx, workerID)
	if err != nil {
		return onboarding.Record{}, false, err
	}
	rec, ok := m.Dispatch(a)
	return rec, ok, nil
}

func (uc *StepsUseCase) ExecuteUpdateBasicInfo(ctx context.Context, workerID uuid.UUID, in UpdateBasicInfoInput) (onboarding.Record, error) {
	rec, _, err := uc.dispatch(ctx, workerID, onboarding.UpdateBasicInfo{Bio: in.Bio, Phone: in.Phone})
	return rec, err
}

func (uc *StepsUseCase) ExecuteUpdateLocation(ctx context.Context, workerID uuid.UUID, in UpdateLocationInput) (onboarding.Record, error) {
	rec, _, err := uc.dispatch(ctx, workerID, onboarding.UpdateLocation{
		Region: in.Region, City: in.City, Town: in.Town, Street: in.Street,
	})
	return rec, err
}

func (uc *StepsUseCase) ExecuteUpdateSkills(ctx context.Context, workerID uuid.UUID, skills []string) (onboarding.Record, error) {
	rec, _, err := uc.dispatch(ctx, workerID, onboarding.UpdateSkills{Skills: skills})
	return rec, err
}

func (uc *StepsUseCase) ExecuteUpdateProfileImage(ctx context.Context, workerID uuid.UUID, file onboarding.MediaFile) (onboarding.Record, error) {
	rec, _, err := uc.dispatch(ctx, workerID, onboarding.UpdateProfileImage{File: file})
	return rec, err
}

func (uc *StepsUseCase) ExecuteUpdateIDCard(ctx context.Context, workerID uuid.UUID, file onboarding.MediaFile) (onboarding.Record, error) {
	rec, _, err := uc.dispatch(ctx, workerID, onboarding.UpdateIDCard{File: file})
	return rec, err
}

// Navigation is permissive: it never consults the validator. The client asks
// for validation separately (ExecuteValidate) and decides what to show.
func (uc *StepsUseCase) ExecuteNext(ctx context.Context, workerID uuid.UUID) (onboarding.Record, bool, error) {
	return uc.dispatch(ctx, workerID, onboarding.GoToNextStep{})
}

func (uc *StepsUseCase) ExecutePrevious(ctx context.Context, workerID uuid.UUID) (onboarding.Record, bool, error) {
	return uc.dispatch(ctx, workerID, onboarding.GoToPreviousStep{})
}

func (uc *StepsUseCase) ExecuteGoToStep(ctx context.Context, workerID uuid.UUID, step int) (onboarding.Record, bool, error) {
	return uc.dispatch(ctx, workerID, onboarding.GoToStep{Step: step})
}

// ExecuteValidate runs the step validator against the current record and
// stores the result on the machine so the client's next read sees it.
func (uc *StepsUseCase) ExecuteValidate(ctx context.Context, workerID uuid.UUID) (map[string]string, error) {
	m, err := uc.manager.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	snap := m.Snapshot()
	errs := onboarding.Validate(snap.CurrentStep, snap)
	m.Dispatch(onboarding.SetErrors{Errors: errs})
	return errs, nil
}

// ExecuteAbandon is the explicit user-initiated reset: defaults restored,
// draft gone, machine released.
func (uc *StepsUseCase) ExecuteAbandon(ctx context.Context, workerID uuid.UUID) error {
	m, err := uc.manager.Get(ctx, workerID)
	if err != nil {
		return err
	}
	if err := m.Reset(ctx); err != nil {
		return err
	}
	uc.manager.Release(workerID)
	return nil
}
