package media_storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// SlotIssuer is the slice of the marketplace API the uploader needs.
type SlotIssuer interface {
	RequestUploadSlot(ctx context.Context, purpose onboarding.Purpose, fileName, contentType string) (service.UploadSlot, error)
}

// presignedUploader implements the two-phase upload: ask the backend for a
// pre-signed slot, then PUT the bytes straight to object storage. The
// backend never touches the file.
type presignedUploader struct {
	slots      SlotIssuer
	fs         afero.Fs
	httpClient *http.Client
	log        logger.Logger
}

func NewPresignedUploader(slots SlotIssuer, fs afero.Fs, httpClient *http.Client, log logger.Logger) service.Uploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &presignedUploader{slots: slots, fs: fs, httpClient: httpClient, log: log}
}

func (u *presignedUploader) Upload(ctx context.Context, file onboarding.MediaFile, purpose onboarding.Purpose) (string, error) {
	fileName, contentType := descriptorDefaults(file, purpose)

	slot, err := u.slots.RequestUploadSlot(ctx, purpose, fileName, contentType)
	if err != nil {
		return "", err
	}

	f, err := u.fs.Open(localPath(file.URI))
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.FileURL, f)
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = fi.Size()

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", &onboarding.UploadError{Purpose: purpose, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &onboarding.UploadError{
			Purpose: purpose,
			Cause:   fmt.Errorf("object storage returned status %d", resp.StatusCode),
		}
	}

	u.log.Info("media uploaded",
		zap.String("purpose", string(purpose)),
		zap.String("file_key", slot.FileKey),
		zap.Int64("bytes", fi.Size()))

	return slot.PublicURL, nil
}

// descriptorDefaults fills in the name and MIME type when the picker didn't
// report them, keyed by purpose.
func descriptorDefaults(file onboarding.MediaFile, purpose onboarding.Purpose) (fileName, contentType string) {
	fileName = file.FileName
	contentType = file.MimeType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if fileName == "" {
		if purpose == onboarding.PurposeIDCard {
			fileName = "id-card.jpg"
		} else {
			fileName = "profile.jpg"
		}
	}
	return fileName, contentType
}

// localPath strips the device-side file scheme off a descriptor URI.
func localPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
