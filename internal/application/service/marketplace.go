package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
)

// UploadSlot is a backend-issued, time-limited permission to write one object
// directly to storage. FileURL receives the binary PUT; PublicURL is what the
// committed profile references afterwards.
type UploadSlot struct {
	FileKey   string
	FileURL   string
	PublicURL string
}

// CompleteProfileInput is the aggregated payload committed at the end of the
// flow. Media URLs are empty when the worker skipped the corresponding step;
// the client must then omit them from the request body.
type CompleteProfileInput struct {
	Bio             string
	Phone           string
	Location        onboarding.Location
	Skills          []string
	ProfileImageURL string
	IDCardURL       string
}

// MarketplaceAPI is the backend surface this engine consumes. The transport
// lives in adapters/backend.
type MarketplaceAPI interface {
	RequestUploadSlot(ctx context.Context, purpose onboarding.Purpose, fileName, contentType string) (UploadSlot, error)
	CompleteProfile(ctx context.Context, workerID uuid.UUID, in CompleteProfileInput) error
	GetProfile(ctx context.Context, workerID uuid.UUID) (*profile.TaskerProfile, error)
}

// EventPublisher emits onboarding lifecycle events. Best-effort: publish
// failures are logged by callers, never propagated.
type EventPublisher interface {
	PublishSubmitted(ctx context.Context, workerID uuid.UUID) error
	PublishMediaUploaded(ctx context.Context, workerID uuid.UUID, purpose onboarding.Purpose, url string) error
}
