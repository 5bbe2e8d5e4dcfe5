// Package session keeps one reminder store, with its sweeper, per signed-in
// user of the server.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
	"visuall/cmd/internal/metrics"
	"visuall/cmd/internal/reminder"

	"github.com/labstack/gommon/log"
)

var ErrClosed = errors.New("session registry is closed")

type StoreFactory func() *reminder.Store

type entry struct {
	store    *reminder.Store
	sweeper  *reminder.Sweeper
	lastUsed time.Time
}

type Registry struct {
	ctx         context.Context
	newStore    StoreFactory
	interval    time.Duration
	retention   time.Duration
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[int]*entry
	closed   bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRegistry ties every sweeper it starts to ctx. Sessions unused for
// idleTimeout are evicted once Start runs; zero disables eviction.
func NewRegistry(ctx context.Context, newStore StoreFactory, interval, retention, idleTimeout time.Duration) *Registry {
	if interval <= 0 {
		interval = reminder.DefaultSweepInterval
	}
	return &Registry{
		ctx:         ctx,
		newStore:    newStore,
		interval:    interval,
		retention:   retention,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[int]*entry),
	}
}

// Acquire returns the store of userID, loading it and starting its sweeper
// the first time. An expired backlog is swept right after loading.
func (r *Registry) Acquire(ctx context.Context, userID int) (*reminder.Store, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if e, ok := r.sessions[userID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.store, nil
	}
	r.mu.Unlock()

	store := r.newStore()
	if err := store.Load(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := store.Sweep(ctx, r.retention); err != nil {
		log.Warnf("initial sweep for user %d failed: %v", userID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	// A concurrent Acquire may have loaded the same user meanwhile.
	if e, ok := r.sessions[userID]; ok {
		e.lastUsed = r.now()
		return e.store, nil
	}

	sweeper := reminder.NewSweeper(store, r.interval, r.retention)
	sweeper.Start(r.ctx)

	r.sessions[userID] = &entry{store: store, sweeper: sweeper, lastUsed: r.now()}
	metrics.ActiveSessions.Inc()
	return store, nil
}

// Release stops the sweeper of userID and detaches its store, so requests
// still holding it fail with reminder.ErrNotAuthenticated. Releasing an
// unknown user does nothing.
func (r *Registry) Release(userID int) {
	r.mu.Lock()
	e, ok := r.sessions[userID]
	r.mu.Unlock()

	if !ok {
		return
	}
	r.drop(userID, e)
}

// drop detaches e before removing it from the map, so no second store for the
// same user can be loaded while the old one still accepts writes.
func (r *Registry) drop(userID int, e *entry) {
	e.sweeper.Stop()
	_ = e.store.Load(context.Background(), 0)

	r.mu.Lock()
	removed := false
	if cur, ok := r.sessions[userID]; ok && cur == e {
		delete(r.sessions, userID)
		removed = true
	}
	r.mu.Unlock()

	if removed {
		metrics.ActiveSessions.Dec()
	}
}

// EvictIdle releases every session unused for longer than the idle timeout
// and returns how many were released.
func (r *Registry) EvictIdle() int {
	if r.idleTimeout <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.idleTimeout)
	idle := make(map[int]*entry)

	r.mu.Lock()
	for userID, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			idle[userID] = e
		}
	}
	r.mu.Unlock()

	for userID, e := range idle {
		r.drop(userID, e)
	}
	return len(idle)
}

// Start launches the idle-session janitor; calling it twice is a no-op.
func (r *Registry) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil || r.closed || r.idleTimeout <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.janitor(ctx, r.done)
}

func (r *Registry) janitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := r.EvictIdle(); evicted > 0 {
				log.Infof("released %d idle session(s)", evicted)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the janitor and releases every session; later Acquire calls
// fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	sessions := make(map[int]*entry, len(r.sessions))
	for userID, e := range r.sessions {
		sessions[userID] = e
	}
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	for userID, e := range sessions {
		r.drop(userID, e)
	}
}
