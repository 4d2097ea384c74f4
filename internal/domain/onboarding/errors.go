package onboarding

import (
	"errors"
	"fmt"

	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
)

// Purpose tags a media upload so the backend can issue the right kind of
// pre-signed slot. The values are wire values, shared with the upload-slot
// endpoints and event payloads.
type Purpose string

const (
	PurposeProfile Purpose = "profile"
	PurposeIDCard  Purpose = "idCard"
)

// ErrDraftNotFound is returned by a DraftStore when no draft exists for the
// worker.
var ErrDraftNotFound = errors.New("onboarding draft not found")

// SlotError means the backend refused to issue an upload slot (non-200
// status or a response missing the upload URL).
type SlotError struct {
	Purpose Purpose
	Status  int
	Cause   error
}

func (e *SlotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upload slot request for %q failed: %v", e.Purpose, e.Cause)
	}
	return fmt.Sprintf("upload slot request for %q failed with status %d", e.Purpose, e.Status)
}

func (e *SlotError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return apperror.ErrUpstream
}

// UploadError means the binary write to object storage failed. No remote
// object is referenced by the record when this is returned.
type UploadError struct {
	Purpose Purpose
	Cause   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q media failed: %v", e.Purpose, e.Cause)
}

func (e *UploadError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return apperror.ErrUpstream
}

// SubmissionError means the backend rejected the profile-completion payload.
// Message carries the backend's own message when it sent one.
type SubmissionError struct {
	Message string
	Cause   error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("profile submission rejected: %s", e.Message)
	}
	return fmt.Sprintf("profile submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return apperror.ErrUpstream
}

// UserMessage is what the mobile client shows the worker.
func (e *SubmissionError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "Something went wrong while submitting your profile. Please try again."
}
