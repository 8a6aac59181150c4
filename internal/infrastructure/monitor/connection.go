package monitor

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/internal/infrastructure/buffer"
)

// Check is one named dependency check.
type Check struct {
	Name    string
	Timeout time.Duration
	Ping    func(ctx context.Context) error
	// Store marks the check whose failure makes the task store offline.
	Store bool
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgresql", Timeout: 3 * time.Second, Store: true, Ping: pool.Ping}
}

func SQLiteCheck(db *sql.DB) Check {
	return Check{Name: "sqlite", Timeout: time.Second, Store: true, Ping: db.PingContext}
}

func RedisCheck(client redislib.UniversalClient) Check {
	return Check{Name: "redis", Timeout: 2 * time.Second, Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

type Monitor struct {
	checks []Check
	buffer *buffer.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the task store answered its last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.checks {
		if c.Store && !m.status.Services[c.Name] {
			return false
		}
	}
	return true
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	status := m.status
	status.Services = services
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and stores the result.
func (m *Monitor) Refresh() {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		Services:   make(map[string]bool, len(m.checks)),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}
	for _, c := range m.checks {
		status.Services[c.Name] = m.ping(c)
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	for name, ok := range status.Services {
		if was, seen := previous.Services[name]; seen && was != ok {
			m.logger.Warn("dependency state changed", zap.String("service", name), zap.Bool("online", ok))
		}
	}
}

func (m *Monitor) ping(c Check) bool {
	if c.Ping == nil {
		return false
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Ping(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
