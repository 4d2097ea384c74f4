package onboarding

import (
	"context"

	"github.com/google/uuid"
)

// DraftStore persists the in-progress record so an interrupted flow resumes
// where it left off. The payload and the step pointer live under two
// independent keys (a layout the first mobile release shipped with, kept for
// compatibility); every write path must keep both in sync.
//
// Implementations: redis (primary), postgres and in-memory under
// adapters/persistence.
type DraftStore interface {
	// SaveData writes the serialized record payload. CurrentStep is not
	// part of the payload; see SaveStep.
	SaveData(ctx context.Context, workerID uuid.UUID, r Record) error

	// SaveStep writes the step pointer under its own key.
	SaveStep(ctx context.Context, workerID uuid.UUID, step int) error

	// Load merges the payload blob with the separately stored step pointer
	// into a full record. Returns ErrDraftNotFound when the worker has no
	// draft.
	Load(ctx context.Context, workerID uuid.UUID) (Record, error)

	// Clear removes both entries. Clearing an absent draft is not an
	// error; Clear is idempotent.
	Clear(ctx context.Context, workerID uuid.UUID) error
}
