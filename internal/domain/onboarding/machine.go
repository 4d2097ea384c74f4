package onboarding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

const persistTimeout = 5 * time.Second

// Machine is the sole writer of one worker's Record. Actions are applied
// synchronously under the lock; the matching draft write is fire-and-forget.
//
// Because each mutation spawns its own write, two rapid mutations may land in
// the store out of order: the persisted snapshot can transiently lag the
// in-memory record if the process dies between writes. That window is
// accepted — the draft is best-effort recovery state, not the source of
// truth. A clear is different: a write issued before a reset must never land
// after it and resurrect the draft, so resets bump a generation counter and
// stale writes are dropped.
type Machine struct {
	workerID uuid.UUID
	store    DraftStore
	log      logger.Logger

	mu     sync.Mutex
	record Record
	gen    uint64

	// storeMu serializes draft writes against clears so a reset observes
	// (or supersedes) every write issued before it.
	storeMu sync.Mutex
}

// NewMachine starts a fresh flow at step one.
func NewMachine(workerID uuid.UUID, store DraftStore, log logger.Logger) *Machine {
	return &Machine{
		workerID: workerID,
		store:    store,
		log:      log.With(zap.String("worker_id", workerID.String())),
		record:   NewRecord(),
	}
}

// Rehydrate restores a machine from the draft store, falling back to a fresh
// record when no draft exists. Called once per flow, on app restart.
func Rehydrate(ctx context.Context, workerID uuid.UUID, store DraftStore, log logger.Logger) (*Machine, error) {
	m := NewMachine(workerID, store, log)

	r, err := store.Load(ctx, workerID)
	switch {
	case err == nil:
		m.record = r
	case err == ErrDraftNotFound:
		// fresh flow
	default:
		return nil, err
	}
	return m, nil
}

func (m *Machine) WorkerID() uuid.UUID { return m.workerID }

// Snapshot returns a deep copy of the current record. Readers never see the
// machine's own copy.
func (m *Machine) Snapshot() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record.clone()
}

// Dispatch applies one action and, when it changed persisted state, issues a
// best-effort background draft write. The returned record is a snapshot of
// the post-action state; ok is false when a navigation action was rejected.
func (m *Machine) Dispatch(a Action) (Record, bool) {
	_, isReset := a.(Reset)

	m.mu.Lock()
	next, ok := Apply(m.record, a)
	if ok {
		m.record = next
		if isReset {
			m.gen++
		}
	}
	snap := m.record.clone()
	gen := m.gen
	m.mu.Unlock()

	if ok && persists(a) {
		if isReset {
			go m.clearDraft()
		} else {
			go m.persist(snap, gen)
		}
	}
	return snap, ok
}

// Reset restores defaults and clears the draft synchronously. Used by the
// submission pipeline and the explicit abandon operation, where the caller
// needs to know the draft is gone.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.record = NewRecord()
	m.gen++
	m.mu.Unlock()

	m.storeMu.Lock()
	defer m.storeMu.Unlock()
	return m.store.Clear(ctx, m.workerID)
}

// persists reports whether an action touches state the draft store carries.
// Errors and the submitting flag are transient and never serialized, so
// writing them out would be a no-op.
func persists(a Action) bool {
	switch a.(type) {
	case SetErrors, ClearErrors, SetSubmitting:
		return false
	}
	return true
}

func (m *Machine) persist(r Record, gen uint64) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	// A reset ran after this write was issued; the draft is gone and must
	// stay gone.
	m.mu.Lock()
	stale := gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	// A failed write is logged and swallowed: the engine keeps operating
	// in-memory and the next mutation will try again.
	if err := m.store.SaveData(ctx, m.workerID, r); err != nil {
		m.log.Warn("draft payload write failed", zap.Error(err))
	}
	if err := m.store.SaveStep(ctx, m.workerID, r.CurrentStep); err != nil {
		m.log.Warn("draft step write failed", zap.Error(err))
	}
}

func (m *Machine) clearDraft() {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := m.store.Clear(ctx, m.workerID); err != nil {
		m.log.Warn("draft clear failed", zap.Error(err))
	}
}
