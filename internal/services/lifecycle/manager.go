package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

// RunFunc is a long-running component. It returns when ctx is done or it fails.
type RunFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager runs the long-lived components of the server, stops them on
// SIGTERM/SIGINT or on the first failure, and then runs shutdown hooks.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a lifecycle manager bound to parent. The manager's context is
// cancelled by OS termination signals.
func New(parent context.Context, timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	group, gctx := errgroup.WithContext(ctx)
	return &Manager{
		timeout: timeout,
		logger:  logger,
		group:   group,
		ctx:     gctx,
		cancel:  cancel,
	}
}

// Context is cancelled once shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a shutdown hook. Hooks are executed in reverse order.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Go starts a component. A component error triggers shutdown of the rest.
func (m *Manager) Go(name string, fn RunFunc) {
	m.group.Go(func() error {
		m.logger.Info("component started", zap.String("component", name))
		if err := fn(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("component failed", zap.String("component", name), zap.Error(err))
			return err
		}
		return nil
	})
}

// Wait blocks until shutdown begins, runs the hooks and waits for the
// components to return.
func (m *Manager) Wait() error {
	<-m.ctx.Done()
	shutdownErr := m.Shutdown(context.Background())
	runErr := m.group.Wait()
	return errors.Join(runErr, shutdownErr)
}

// Shutdown executes all registered hooks, respecting the configured timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	m.mu.Lock()
	hooks := m.hooks
	m.hooks = nil
	m.mu.Unlock()

	var result error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name))
	}
	return result
}

// Listen cancels the manager's context when an OS termination signal arrives.
func (m *Manager) Listen() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
			m.cancel()
		case <-m.ctx.Done():
		}
	}()
}

// Stop begins shutdown without a signal.
func (m *Manager) Stop() {
	m.cancel()
}
