package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
)

const (
	DefaultSweepInterval   = time.Minute
	DefaultRetentionWindow = 5 * time.Minute
)

type Sweepable interface {
	Sweep(ctx context.Context, retention time.Duration) (int, error)
}

// Sweeper periodically evicts completed reminders older than the retention
// window. It must be stopped by whoever started it.
type Sweeper struct {
	target    Sweepable
	interval  time.Duration
	retention time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(target Sweepable, interval, retention time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if retention <= 0 {
		retention = DefaultRetentionWindow
	}
	return &Sweeper{target: target, interval: interval, retention: retention}
}

// Start launches the ticker goroutine; calling it on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop cancels the ticker and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	evicted, err := s.target.Sweep(ctx, s.retention)
	if err != nil {
		log.Errorf("reminder sweep failed: %v", err)
		return
	}
	if evicted > 0 {
		log.Infof("reminder sweep evicted %d completed reminder(s)", evicted)
	}
}
