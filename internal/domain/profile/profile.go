package profile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
)

// TaskerProfile is the committed profile as the marketplace backend returns
// it after onboarding completes. The engine never assembles one locally; it
// re-fetches after the commit so the cached identity always reflects what
// the backend accepted.
type TaskerProfile struct {
	WorkerID     uuid.UUID           `json:"workerId"`
	Bio          string              `json:"bio"`
	Phone        string              `json:"phone"`
	Location     onboarding.Location `json:"location"`
	Skills       []string            `json:"skills"`
	ProfileImage string              `json:"profileImage,omitempty"`
	IDCardURL    string              `json:"idCard,omitempty"`
	Verified     bool                `json:"verified"`
	CompletedAt  time.Time           `json:"completedAt"`
}

// Cache holds the caller's active profile after submission.
type Cache interface {
	Set(ctx context.Context, p *TaskerProfile) error
	Get(ctx context.Context, workerID uuid.UUID) (*TaskerProfile, error)
}
