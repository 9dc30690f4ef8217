package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 3 * time.Second

// Monitor runs probes on a cron schedule and caches the result for the health
// endpoint.
type Monitor struct {
	probes   []Probe
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status
}

func New(interval time.Duration, logger *zap.Logger, probes ...Probe) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start runs the probes once and then schedules them every interval.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())
	schedule := fmt.Sprintf("@every %ds", int(m.interval.Seconds()))
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return fmt.Errorf("schedule health probes: %w", err)
	}
	m.cron.Start()
	m.logger.Info("connection monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop waits for a running probe round to finish or for ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

// Refresh runs every probe and records the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Healthy:   true,
		Services:  make(map[string]bool, len(m.probes)),
		LastCheck: time.Now().UTC(),
	}
	for _, p := range m.probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(probeCtx)
		cancel()

		status.Services[p.Name] = err == nil
		if err != nil {
			m.logger.Warn("dependency probe failed", zap.String("service", p.Name), zap.Error(err))
			if !p.Optional {
				status.Healthy = false
			}
		}
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy != status.Healthy {
		m.logger.Info("service health changed", zap.Bool("healthy", status.Healthy))
	}
	return status.clone()
}
