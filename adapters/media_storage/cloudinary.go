package media_storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/config"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// cloudinaryUploader is the alternative media provider: instead of
// marketplace upload slots, files go straight to Cloudinary and the secure
// URL becomes the public URL. Selected with media.provider=cloudinary.
type cloudinaryUploader struct {
	cld *cloudinary.Cloudinary
	fs  afero.Fs
	log logger.Logger
}

var purposeFolders = map[onboarding.Purpose]string{
	onboarding.PurposeProfile: "taskers/profile-photos",
	onboarding.PurposeIDCard:  "taskers/id-cards",
}

func NewCloudinaryUploader(cfg config.Config, fs afero.Fs, log logger.Logger) (service.Uploader, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.")
	return &cloudinaryUploader{cld: cld, fs: fs, log: log}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file onboarding.MediaFile, purpose onboarding.Purpose) (string, error) {
	folder, ok := purposeFolders[purpose]
	if !ok {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: fmt.Errorf("unknown upload purpose %q", purpose)}
	}

	f, err := u.fs.Open(localPath(file.URI))
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}
	defer f.Close()

	result, err := u.cld.Upload.Upload(ctx, f, uploader.UploadParams{
		PublicID: uuid.NewString(),
		Folder:   folder,
	})
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}

	return result.SecureURL, nil
}
