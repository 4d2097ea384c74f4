package onboarding

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/worklinkgh/tasker-onboarding/pkg/logger"
)

// Manager owns the machine lifecycle: one Machine per worker, created (or
// rehydrated from the draft store) on first touch and released when the flow
// ends — after a successful submission or an explicit abandon.
type Manager struct {
	store DraftStore
	log   logger.Logger

	mu       sync.Mutex
	machines map[uuid.UUID]*Machine
}

func NewManager(store DraftStore, log logger.Logger) *Manager {
	return &Manager{
		store:    store,
		log:      log,
		machines: make(map[uuid.UUID]*Machine),
	}
}

// Get returns the worker's machine, rehydrating from the draft store the
// first time the worker shows up after a restart.
func (g *Manager) Get(ctx context.Context, workerID uuid.UUID) (*Machine, error) {
	g.mu.Lock()
	if m, ok := g.machines[workerID]; ok {
		g.mu.Unlock()
		return m, nil
	}
	g.mu.Unlock()

	// Rehydration reads the store outside the lock; a racing second call
	// for the same worker loses and discards its machine.
	m, err := Rehydrate(ctx, workerID, g.store, g.log)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.machines[workerID]; ok {
		return existing, nil
	}
	g.machines[workerID] = m
	return m, nil
}

// Release drops the worker's machine. The next Get rehydrates from the
// store, so releasing mid-flow only costs a read.
func (g *Manager) Release(workerID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.machines, workerID)
}
