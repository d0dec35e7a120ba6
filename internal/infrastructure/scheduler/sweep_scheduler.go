package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	appledger "github.com/erp/receivables/internal/application/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when an operation requires a running scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// Sweeper marks due receivables overdue for one tenant
type Sweeper interface {
	Sweep(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*appledger.SweepResult, error)
}

// TenantSource lists the tenants the sweep should cover
type TenantSource interface {
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SweepSchedulerConfig holds configuration for the overdue sweep scheduler
type SweepSchedulerConfig struct {
	// Enabled indicates if the sweep scheduler is enabled
	Enabled bool
	// Interval is how often the sweep runs
	Interval time.Duration
}

// DefaultSweepSchedulerConfig returns default sweep scheduler configuration
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Enabled:  true,
		Interval: time.Hour,
	}
}

// SweepScheduler periodically marks due receivables overdue across all tenants.
// The sweep is idempotent, so overlapping or repeated runs are harmless.
type SweepScheduler struct {
	config       SweepSchedulerConfig
	sweeper      Sweeper
	tenantSource TenantSource
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewSweepScheduler creates a new SweepScheduler
func NewSweepScheduler(
	config SweepSchedulerConfig,
	sweeper Sweeper,
	tenantSource TenantSource,
	logger *zap.Logger,
) *SweepScheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &SweepScheduler{
		config:       config,
		sweeper:      sweeper,
		tenantSource: tenantSource,
		logger:       logger,
	}
}

// Start starts the sweep scheduler
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.sweepLoop(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the sweep scheduler
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// sweepLoop runs the main sweep loop
func (s *SweepScheduler) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
			s.calculateNextRunTime()
		}
	}
}

// calculateNextRunTime calculates the next run time
func (s *SweepScheduler) calculateNextRunTime() {
	next := time.Now().Add(s.config.Interval)
	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runSweep runs the overdue sweep for all known tenants
func (s *SweepScheduler) runSweep(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	tenantIDs, err := s.tenantSource.ListTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list tenants for overdue sweep", zap.Error(err))
		return
	}

	s.logger.Info("Starting overdue sweep", zap.Int("tenant_count", len(tenantIDs)))

	for _, tenantID := range tenantIDs {
		result, err := s.sweeper.Sweep(ctx, tenantID, now)
		if err != nil {
			s.logger.Error("Overdue sweep failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}

		if result.MarkedOverdue > 0 || result.Failed > 0 {
			s.logger.Info("Overdue sweep completed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("scanned", result.Scanned),
				zap.Int("marked_overdue", result.MarkedOverdue),
				zap.Int("failed", result.Failed),
				zap.String("overdue_balance", result.OverdueBalance.String()),
			)
		}
	}
}

// TriggerManualRun triggers a manual sweep run
// Note: Uses background context to avoid premature cancellation when HTTP request completes
func (s *SweepScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runSweep(context.Background())
	return nil
}

// GetStatus returns the current status of the sweep scheduler
func (s *SweepScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"interval":    s.config.Interval.String(),
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetLastRunAt returns when the last run occurred
func (s *SweepScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
