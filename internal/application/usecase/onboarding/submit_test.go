package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklinkgh/tasker-onboarding/adapters/persistence"
	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/profile"
	"github.com/worklinkgh/tasker-onboarding/pkg/apperror"
	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

type fakeUploader struct {
	mu    sync.Mutex
	urls  map[onboarding.Purpose]string
	errs  map[onboarding.Purpose]error
	calls []onboarding.Purpose
}

func (f *fakeUploader) Upload(_ context.Context, _ onboarding.MediaFile, purpose onboarding.Purpose) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, purpose)
	f.mu.Unlock()
	if err := f.errs[purpose]; err != nil {
		return "", err
	}
	return f.urls[purpose], nil
}

func (f *fakeUploader) callCount() []onboarding.Purpose {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]onboarding.Purpose(nil), f.calls...)
}

type fakeAPI struct {
	completeCalled bool
	completeInput  service.CompleteProfileInput
	completeErr    error
	profile        *profile.TaskerProfile
}

func (f *fakeAPI) RequestUploadSlot(context.Context, onboarding.Purpose, string, string) (service.UploadSlot, error) {
	return service.UploadSlot{}, errors.New("not used by these tests")
}

func (f *fakeAPI) CompleteProfile(_ context.Context, _ uuid.UUID, in service.CompleteProfileInput) error {
	f.completeCalled = true
	f.completeInput = in
	return f.completeErr
}

func (f *fakeAPI) GetProfile(_ context.Context, workerID uuid.UUID) (*profile.TaskerProfile, error) {
	if f.profile == nil {
		return nil, errors.New("no profile configured")
	}
	p := *f.profile
	p.WorkerID = workerID
	return &p, nil
}

type fakeCache struct {
	mu  sync.Mutex
	set *profile.TaskerProfile
}

func (f *fakeCache) Set(_ context.Context, p *profile.TaskerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = p
	return nil
}

func (f *fakeCache) Get(context.Context, uuid.UUID) (*profile.TaskerProfile, error) {
	return nil, apperror.NewNotFound("tasker profile", "any")
}

type fakeEvents struct {
	mu        sync.Mutex
	submitted int
	media     []onboarding.Purpose
}

func (f *fakeEvents) PublishSubmitted(context.Context, uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted++
	return nil
}

func (f *fakeEvents) PublishMediaUploaded(_ context.Context, _ uuid.UUID, purpose onboarding.Purpose, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, purpose)
	return nil
}

func (f *fakeEvents) submittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

func seedDraft(t *testing.T, store onboarding.DraftStore, workerID uuid.UUID, r onboarding.Record) {
	t.Helper()
	require.NoError(t, store.SaveData(context.Background(), workerID, r))
	require.NoError(t, store.SaveStep(context.Background(), workerID, r.CurrentStep))
}

func baseRecord() onboarding.Record {
	r := onboarding.NewRecord()
	r.Bio = "Experienced plumber with 5 years"
	r.Phone = "0551234567"
	r.Location = onboarding.Location{Region: "Greater Accra", City: "Accra"}
	r.Skills = []string{"Plumbing"}
	r.CurrentStep = onboarding.StepReview
	return r
}

func newSubmitFixture(uploader service.Uploader, api *fakeAPI) (*SubmitUseCase, *onboarding.Manager, onboarding.DraftStore, *fakeCache, *fakeEvents) {
	store := persistence.NewInmemDraftStore()
	manager := onboarding.NewManager(store, logger.NewNop())
	cache := &fakeCache{}
	events := &fakeEvents{}
	uc := NewSubmitUseCase(manager, uploader, api, cache, events, logger.NewNop())
	return uc, manager, store, cache, events
}

// No media attached: the commit payload carries exactly the four populated
// fields and the uploader is never consulted.
func TestSubmit_NoMediaOmitsMediaFields(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{}
	api := &fakeAPI{profile: &profile.TaskerProfile{Bio: "Experienced plumber with 5 years", Verified: false}}
	uc, manager, store, cache, events := newSubmitFixture(uploader, api)

	seedDraft(t, store, workerID, baseRecord())

	p, err := uc.Execute(context.Background(), workerID)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Empty(t, uploader.callCount())
	require.True(t, api.completeCalled)
	assert.Equal(t, "Experienced plumber with 5 years", api.completeInput.Bio)
	assert.Equal(t, "0551234567", api.completeInput.Phone)
	assert.Equal(t, onboarding.Location{Region: "Greater Accra", City: "Accra"}, api.completeInput.Location)
	assert.Equal(t, []string{"Plumbing"}, api.completeInput.Skills)
	assert.Empty(t, api.completeInput.ProfileImageURL)
	assert.Empty(t, api.completeInput.IDCardURL)

	// Draft cleared, record reset, cache refreshed.
	_, loadErr := store.Load(context.Background(), workerID)
	assert.ErrorIs(t, loadErr, onboarding.ErrDraftNotFound)

	m, err := manager.Get(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.NewRecord(), m.Snapshot())

	cache.mu.Lock()
	assert.NotNil(t, cache.set)
	cache.mu.Unlock()

	assert.Eventually(t, func() bool { return events.submittedCount() == 1 },
		time.Second, 10*time.Millisecond)
}

// The identity-document slot failing aborts the submission: no commit call,
// submitting flag reset, draft preserved for retry.
func TestSubmit_IDCardSlotFailureAborts(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{
		urls: map[onboarding.Purpose]string{onboarding.PurposeProfile: "https://cdn.worklink.example/p.jpg"},
		errs: map[onboarding.Purpose]error{
			onboarding.PurposeIDCard: &onboarding.SlotError{Purpose: onboarding.PurposeIDCard, Status: 500},
		},
	}
	api := &fakeAPI{profile: &profile.TaskerProfile{}}
	uc, manager, store, _, _ := newSubmitFixture(uploader, api)

	rec := baseRecord()
	rec.ProfileImage = onboarding.MediaFile{URI: "file:///photos/me.jpg", MimeType: "image/jpeg", FileName: "profile.jpg"}
	rec.IDCard.MediaFile = onboarding.MediaFile{URI: "file:///photos/id.jpg", MimeType: "image/jpeg", FileName: "id-card.jpg"}
	seedDraft(t, store, workerID, rec)

	_, err := uc.Execute(context.Background(), workerID)

	var slotErr *onboarding.SlotError
	require.ErrorAs(t, err, &slotErr)
	assert.Equal(t, onboarding.PurposeIDCard, slotErr.Purpose)

	assert.False(t, api.completeCalled, "backend commit never attempted")

	m, getErr := manager.Get(context.Background(), workerID)
	require.NoError(t, getErr)
	assert.False(t, m.Snapshot().IsSubmitting)

	restored, loadErr := store.Load(context.Background(), workerID)
	require.NoError(t, loadErr, "draft survives a failed submission")
	assert.Equal(t, "Experienced plumber with 5 years", restored.Bio)
}

// Uploads are sequenced: a profile-photo failure short-circuits before the
// identity document is ever attempted.
func TestSubmit_ProfileUploadFailureShortCircuits(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{
		errs: map[onboarding.Purpose]error{
			onboarding.PurposeProfile: &onboarding.UploadError{Purpose: onboarding.PurposeProfile, Cause: errors.New("storage said no")},
		},
	}
	api := &fakeAPI{profile: &profile.TaskerProfile{}}
	uc, _, store, _, _ := newSubmitFixture(uploader, api)

	rec := baseRecord()
	rec.ProfileImage = onboarding.MediaFile{URI: "file:///photos/me.jpg", MimeType: "image/jpeg", FileName: "profile.jpg"}
	rec.IDCard.MediaFile = onboarding.MediaFile{URI: "file:///photos/id.jpg", MimeType: "image/jpeg", FileName: "id-card.jpg"}
	seedDraft(t, store, workerID, rec)

	_, err := uc.Execute(context.Background(), workerID)

	var uploadErr *onboarding.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, []onboarding.Purpose{onboarding.PurposeProfile}, uploader.callCount())
	assert.False(t, api.completeCalled)
}

func TestSubmit_ProfileImageURLReachesPayload(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{
		urls: map[onboarding.Purpose]string{onboarding.PurposeProfile: "https://cdn.worklink.example/p.jpg"},
	}
	api := &fakeAPI{profile: &profile.TaskerProfile{}}
	uc, _, store, _, events := newSubmitFixture(uploader, api)

	rec := baseRecord()
	rec.ProfileImage = onboarding.MediaFile{URI: "file:///photos/me.jpg", MimeType: "image/jpeg", FileName: "profile.jpg"}
	seedDraft(t, store, workerID, rec)

	_, err := uc.Execute(context.Background(), workerID)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.worklink.example/p.jpg", api.completeInput.ProfileImageURL)
	assert.Empty(t, api.completeInput.IDCardURL)

	assert.Eventually(t, func() bool {
		events.mu.Lock()
		defer events.mu.Unlock()
		return len(events.media) == 1 && events.media[0] == onboarding.PurposeProfile
	}, time.Second, 10*time.Millisecond)
}

func TestSubmit_BackendRejectionPreservesDraft(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{}
	api := &fakeAPI{
		completeErr: &onboarding.SubmissionError{Message: "phone already registered"},
		profile:     &profile.TaskerProfile{},
	}
	uc, manager, store, _, _ := newSubmitFixture(uploader, api)

	seedDraft(t, store, workerID, baseRecord())

	_, err := uc.Execute(context.Background(), workerID)

	var subErr *onboarding.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "phone already registered", subErr.UserMessage())

	_, loadErr := store.Load(context.Background(), workerID)
	assert.NoError(t, loadErr)

	m, _ := manager.Get(context.Background(), workerID)
	assert.False(t, m.Snapshot().IsSubmitting)
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	workerID := uuid.New()
	uc, manager, store, _, _ := newSubmitFixture(&fakeUploader{}, &fakeAPI{profile: &profile.TaskerProfile{}})

	seedDraft(t, store, workerID, baseRecord())
	m, err := manager.Get(context.Background(), workerID)
	require.NoError(t, err)
	m.Dispatch(onboarding.SetSubmitting{Submitting: true})

	_, err = uc.Execute(context.Background(), workerID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

// gatedUploader blocks until released, keeping one submission in flight
// while another races it.
type gatedUploader struct {
	gate <-chan struct{}
	url  string
}

func (u *gatedUploader) Upload(context.Context, onboarding.MediaFile, onboarding.Purpose) (string, error) {
	<-u.gate
	return u.url, nil
}

// Two simultaneous submissions race for the submitting flag; exactly one
// claims it and the other backs off with a conflict.
func TestSubmit_SimultaneousSubmissionsOnlyOneWins(t *testing.T) {
	workerID := uuid.New()
	gate := make(chan struct{})
	uploader := &gatedUploader{gate: gate, url: "https://cdn.worklink.example/p.jpg"}
	api := &fakeAPI{profile: &profile.TaskerProfile{}}
	uc, _, store, _, _ := newSubmitFixture(uploader, api)

	rec := baseRecord()
	rec.ProfileImage = onboarding.MediaFile{URI: "file:///photos/me.jpg", MimeType: "image/jpeg", FileName: "profile.jpg"}
	seedDraft(t, store, workerID, rec)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := uc.Execute(context.Background(), workerID)
			results <- err
		}()
	}

	// The winner is parked in the upload, so the first result must be the
	// loser's conflict.
	assert.ErrorIs(t, <-results, apperror.ErrConflict)

	close(gate)
	assert.NoError(t, <-results)
}

func TestSubmit_CancelledContextAbortsBeforeUpload(t *testing.T) {
	workerID := uuid.New()
	uploader := &fakeUploader{}
	api := &fakeAPI{profile: &profile.TaskerProfile{}}
	uc, _, store, _, _ := newSubmitFixture(uploader, api)

	rec := baseRecord()
	rec.ProfileImage = onboarding.MediaFile{URI: "file:///photos/me.jpg", MimeType: "image/jpeg", FileName: "profile.jpg"}
	seedDraft(t, store, workerID, rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, workerID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, uploader.callCount())
	assert.False(t, api.completeCalled)
}
