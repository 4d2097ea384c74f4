package service

import (
	"context"

	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
)

// Uploader moves one local media file to remote storage and returns the
// publicly resolvable URL. Implementations: the pre-signed slot uploader
// (primary) and the Cloudinary SDK uploader, selected by config.
type Uploader interface {
	Upload(ctx context.Context, file onboarding.MediaFile, purpose onboarding.Purpose) (string, error)
}
