package onboarding

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// SubmitUseCase is the submission coordinator: it uploads pending media one
// at a time, commits the aggregated profile, refreshes the cached profile and
// clears the draft. Uploads are sequenced, not parallel — when one fails the
// worker is told exactly which one, and nothing after it has run.
//
// On any failure the draft survives, so the worker retries without re-entering
// data.
type SubmitUseCase struct {
	manager  *onboarding.Manager
	uploader service.Uploader
	api      service.MarketplaceAPI
	profiles profile.Cache
	events   service.EventPublisher
	logger   logger.Logger
}

func NewSubmitUseCase(
	manager *onboarding.Manager,
	uploader service.Uploader,
	api service.MarketplaceAPI,
	profiles profile.Cache,
	events service.EventPublisher,
	log logger.Logger,
) *SubmitUseCase {
	return &SubmitUseCase{
		manager:  manager,
		uploader: uploader,
		api:      api,
		profiles: profiles,
		events:   events,
		logger:   log,
	}
}

func (uc *SubmitUseCase) Execute(ctx context.Context, workerID uuid.UUID) (*profile.TaskerProfile, error) {
	m, err := uc.manager.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}

	// Claiming the submitting flag is atomic in the transition function;
	// a concurrent submitter loses the dispatch and backs off here.
	if _, ok := m.Dispatch(onboarding.SetSubmitting{Submitting: true}); !ok {
		return nil, apperror.NewConflict("submission", "a submission is already in flight for this worker")
	}

	snap := m.Snapshot()
	submitted := false
	defer func() {
		// On failure the flag resets and the draft stays put for retry.
		if !submitted {
			m.Dispatch(onboarding.SetSubmitting{Submitting: false})
		}
	}()

	var profileURL, idCardURL string

	if !snap.ProfileImage.IsEmpty() {
		profileURL, err = uc.uploadOne(ctx, workerID, snap.ProfileImage, onboarding.PurposeProfile)
		if err != nil {
			return nil, err
		}
	}

	if snap.IDCard.URI != "" {
		idCardURL, err = uc.uploadOne(ctx, workerID, snap.IDCard.MediaFile, onboarding.PurposeIDCard)
		if err != nil {
			return nil, err
		}
		m.Dispatch(onboarding.UpdateIDCard{Front: &idCardURL})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := service.CompleteProfileInput{
		Bio:             snap.Bio,
		Phone:           snap.Phone,
		Location:        snap.Location,
		Skills:          snap.Skills,
		ProfileImageURL: profileURL,
		IDCardURL:       idCardURL,
	}
	if err := uc.api.CompleteProfile(ctx, workerID, in); err != nil {
		return nil, err
	}

	// The committed profile comes back from the backend, never assembled
	// locally, so the cache reflects exactly what was accepted.
	p, err := uc.api.GetProfile(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if err := uc.profiles.Set(ctx, p); err != nil {
		uc.logger.Warn("profile cache refresh failed", zap.Error(err),
			zap.String("worker_id", workerID.String()))
	}

	if err := m.Reset(ctx); err != nil {
		// The profile is committed; a lingering draft only costs one
		// redundant resume prompt.
		uc.logger.Warn("draft clear after submission failed", zap.Error(err),
			zap.String("worker_id", workerID.String()))
	}
	submitted = true
	uc.manager.Release(workerID)

	go func() {
		if err := uc.events.PublishSubmitted(context.Background(), workerID); err != nil {
			uc.logger.Error("failed to publish 'onboarding.submitted' event", err,
				zap.String("worker_id", workerID.String()))
		}
	}()

	return p, nil
}

func (uc *SubmitUseCase) uploadOne(ctx context.Context, workerID uuid.UUID, file onboarding.MediaFile, purpose onboarding.Purpose) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, err := uc.uploader.Upload(ctx, file, purpose)
	if err != nil {
		return "", err
	}

	go func() {
		if err := uc.events.PublishMediaUploaded(context.Background(), workerID, purpose, url); err != nil {
			uc.logger.Error("failed to publish 'onboarding.media.uploaded' event", err,
				zap.String("worker_id", workerID.String()), zap.String("purpose", string(purpose)))
		}
	}()

	return url, nil
}
