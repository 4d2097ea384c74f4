package onboarding

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// fakeStore mirrors the two-entry draft layout with serialized payloads, the
// way the real backends behave.
type fakeStore struct {
	mu    sync.Mutex
	data  map[uuid.UUID][]byte
	steps map[uuid.UUID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[uuid.UUID][]byte{}, steps: map[uuid.UUID]int{}}
}

func (s *fakeStore) SaveData(_ context.Context, workerID uuid.UUID, r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[workerID] = payload
	return nil
}

func (s *fakeStore) SaveStep(_ context.Context, workerID uuid.UUID, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[workerID] = step
	return nil
}

func (s *fakeStore) Load(_ context.Context, workerID uuid.UUID) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.data[workerID]
	if !ok {
		return Record{}, ErrDraftNotFound
	}
	r := NewRecord()
	if err := json.Unmarshal(payload, &r); err != nil {
		return Record{}, err
	}
	if step, ok := s.steps[workerID]; ok {
		r.CurrentStep = step
	}
	return r, nil
}

func (s *fakeStore) Clear(_ context.Context, workerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, workerID)
	delete(s.steps, workerID)
	return nil
}

func TestMachine_DispatchPersistsDraft(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateBasicInfo{Bio: strPtr("Experienced plumber with 5 years"), Phone: strPtr("0551234567")})
	m.Dispatch(GoToNextStep{})

	assert.Eventually(t, func() bool {
		r, err := store.Load(context.Background(), workerID)
		return err == nil && r.Bio == "Experienced plumber with 5 years" && r.CurrentStep == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMachine_RoundTrip(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateBasicInfo{Bio: strPtr("Experienced plumber with 5 years"), Phone: strPtr("0551234567")})
	m.Dispatch(UpdateLocation{Region: strPtr("Greater Accra"), City: strPtr("Accra")})
	m.Dispatch(UpdateSkills{Skills: []string{"Plumbing", "Painting"}})
	want, _ := m.Dispatch(GoToStep{Step: 3})

	require.Eventually(t, func() bool {
		r, err := store.Load(context.Background(), workerID)
		return err == nil && r.CurrentStep == 3
	}, time.Second, 10*time.Millisecond)

	restored, err := Rehydrate(context.Background(), workerID, store, logger.NewNop())
	require.NoError(t, err)
	got := restored.Snapshot()

	assert.Equal(t, want.Bio, got.Bio)
	assert.Equal(t, want.Phone, got.Phone)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.Skills, got.Skills)
	// The step comes from the dedicated step key, not the payload blob.
	assert.Equal(t, 3, got.CurrentStep)
}

func TestMachine_RehydrateWithoutDraftStartsFresh(t *testing.T) {
	m, err := Rehydrate(context.Background(), uuid.New(), newFakeStore(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, NewRecord(), m.Snapshot())
}

// Two rapid updates are applied in call order in memory; the persisted
// snapshot may lag but converges to the final value.
func TestMachine_RapidUpdatesConverge(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateSkills{Skills: []string{"Plumbing"}})
	rec, _ := m.Dispatch(UpdateSkills{Skills: []string{"Plumbing", "Painting"}})
	assert.Equal(t, []string{"Plumbing", "Painting"}, rec.Skills)

	assert.Eventually(t, func() bool {
		r, err := store.Load(context.Background(), workerID)
		return err == nil && len(r.Skills) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMachine_ResetIsIdempotent(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateSkills{Skills: []string{"Plumbing"}})

	require.NoError(t, m.Reset(context.Background()))
	first := m.Snapshot()

	require.NoError(t, m.Reset(context.Background()))
	assert.Equal(t, first, m.Snapshot())
	assert.Equal(t, NewRecord(), m.Snapshot())

	_, err := store.Load(context.Background(), workerID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

// slowStore delays payload writes, widening the window between a dispatch's
// background persist and a later clear.
type slowStore struct {
	*fakeStore
	delay time.Duration
}

func (s *slowStore) SaveData(ctx context.Context, workerID uuid.UUID, r Record) error {
	time.Sleep(s.delay)
	return s.fakeStore.SaveData(ctx, workerID, r)
}

func TestMachine_ResetSupersedesInFlightPersist(t *testing.T) {
	store := &slowStore{fakeStore: newFakeStore(), delay: 100 * time.Millisecond}
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateSkills{Skills: []string{"Plumbing"}})
	require.NoError(t, m.Reset(context.Background()))

	// Give any write issued before the reset time to land.
	time.Sleep(3 * store.delay)
	_, err := store.Load(context.Background(), workerID)
	assert.ErrorIs(t, err, ErrDraftNotFound, "a write issued before the reset must not resurrect the draft")
}

func TestMachine_ResetActionSupersedesInFlightPersist(t *testing.T) {
	store := &slowStore{fakeStore: newFakeStore(), delay: 100 * time.Millisecond}
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(UpdateSkills{Skills: []string{"Plumbing"}})
	rec, ok := m.Dispatch(Reset{})
	require.True(t, ok)
	assert.Equal(t, NewRecord(), rec)

	time.Sleep(3 * store.delay)
	_, err := store.Load(context.Background(), workerID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestMachine_TransientActionsDoNotPersist(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()
	m := NewMachine(workerID, store, logger.NewNop())

	m.Dispatch(SetErrors{Errors: map[string]string{FieldBio: "too short"}})
	m.Dispatch(SetSubmitting{Submitting: true})

	time.Sleep(50 * time.Millisecond)
	_, err := store.Load(context.Background(), workerID)
	assert.ErrorIs(t, err, ErrDraftNotFound, "transient state never reaches the store")
}

func TestManager_GetRehydratesOncePerWorker(t *testing.T) {
	store := newFakeStore()
	workerID := uuid.New()

	seed := NewMachine(workerID, store, logger.NewNop())
	seed.Dispatch(UpdateBasicInfo{Bio: strPtr("Experienced plumber with 5 years")})
	require.Eventually(t, func() bool {
		_, err := store.Load(context.Background(), workerID)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	g := NewManager(store, logger.NewNop())

	m1, err := g.Get(context.Background(), workerID)
	require.NoError(t, err)
	assert.Equal(t, "Experienced plumber with 5 years", m1.Snapshot().Bio)

	m2, err := g.Get(context.Background(), workerID)
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	g.Release(workerID)
	m3, err := g.Get(context.Background(), workerID)
	require.NoError(t, err)
	assert.NotSame(t, m1, m3)
	assert.Equal(t, "Experienced plumber with 5 years", m3.Snapshot().Bio, "release only costs a re-read")
}
