package supervisor

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotRunning = errors.New("supervisor not running")
	ErrStopped    = errors.New("supervisor stopped")
)

// Config controls the executor pool.
type Config struct {
	// Workers is the pool size. Zero means one worker per available core.
	Workers int

	// QueueDepth is the pending-task buffer. Tasks beyond it run on
	// overflow goroutines so Submit never blocks the caller.
	QueueDepth int

	// ShutdownGrace bounds how long Shutdown waits for in-flight tasks.
	ShutdownGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = 256
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	return c
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Supervisor owns the process-wide task executor. It is created idle,
// started idempotently, and torn down at most once. A stopped supervisor
// never restarts: every subsequent Submit fails fast with ErrStopped.
type Supervisor struct {
	cfg    Config
	mu     sync.Mutex
	st     state
	tasks  chan func(context.Context)
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg Config) *Supervisor {
	return &Supervisor{cfg: cfg.withDefaults()}
}

// EnsureStarted creates the worker pool if it does not exist yet.
// Subsequent calls are no-ops. After Shutdown it returns ErrStopped.
func (s *Supervisor) EnsureStarted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.st {
	case stateRunning:
		return nil
	case stateStopped:
		return ErrStopped
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.tasks = make(chan func(context.Context), s.cfg.QueueDepth)

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	s.st = stateRunning
	Logger().Debug("supervisor started", zap.Int("workers", s.cfg.Workers))
	return nil
}

// Running reports whether the pool accepts work.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == stateRunning
}

// Submit schedules a task on the pool. The task receives a context that is
// cancelled when the supervisor shuts down. Submit never blocks: when the
// queue is full the task runs on its own goroutine instead.
func (s *Supervisor) Submit(task func(context.Context)) error {
	s.mu.Lock()
	if s.st != stateRunning {
		st := s.st
		s.mu.Unlock()
		if st == stateStopped {
			return ErrStopped
		}
		return ErrNotRunning
	}
	ctx := s.ctx
	// Queued tasks need no separate accounting: workers drain the queue
	// before exiting and the workers themselves are tracked.
	select {
	case s.tasks <- task:
		s.mu.Unlock()
		return nil
	default:
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		task(ctx)
	}()
	return nil
}

// Detach runs a task on a dedicated goroutine outside the pool. Blocking
// collaborator calls go through here so a slow synchronous call cannot
// starve pool workers serving unrelated requests.
func (s *Supervisor) Detach(task func(context.Context)) error {
	s.mu.Lock()
	if s.st != stateRunning {
		st := s.st
		s.mu.Unlock()
		if st == stateStopped {
			return ErrStopped
		}
		return ErrNotRunning
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		task(ctx)
	}()
	return nil
}

// Shutdown stops intake, signals cancellation to in-flight tasks, and waits
// up to the configured grace period for them to finish. It is safe to call
// once; later calls return nil without effect. Tasks still running when the
// grace expires are abandoned and reported.
func (s *Supervisor) Shutdown() error {
	s.mu.Lock()
	if s.st != stateRunning {
		s.mu.Unlock()
		return nil
	}
	s.st = stateStopped
	close(s.tasks)
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		Logger().Debug("supervisor drained")
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		Logger().Warn("supervisor shutdown grace expired with tasks still running",
			zap.Duration("grace", s.cfg.ShutdownGrace))
		return errors.New("shutdown grace period expired")
	}
}

func (s *Supervisor) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		task(s.ctx)
	}
}
