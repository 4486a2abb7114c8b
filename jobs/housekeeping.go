package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"movura-admin/config"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

const auditRetention = 180 * 24 * time.Hour

// Housekeeping sweeps expired sessions and stale audit rows on a cron
// schedule from config (default nightly).
type Housekeeping struct {
	cfg      config.HousekeepingConfig
	sessions store.SessionStore
	audits   store.AuditStore
	logger   *utils.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

func NewHousekeeping(cfg config.HousekeepingConfig, sessions store.SessionStore, audits store.AuditStore, logger *utils.Logger) *Housekeeping {
	return &Housekeeping{cfg: cfg, sessions: sessions, audits: audits, logger: logger}
}

func (h *Housekeeping) Start(ctx context.Context) error {
	if h == nil || !h.cfg.Enabled {
		return nil
	}
	sched, err := cron.ParseStandard(h.cfg.PurgeSchedule)
	if err != nil {
		return err
	}
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.running = true
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		for {
			next := sched.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				h.RunOnce(runCtx, time.Now().UTC())
			case <-runCtx.Done():
				timer.Stop()
				return
			}
		}
	}()
	return nil
}

func (h *Housekeeping) Stop(ctx context.Context) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	if h.cancel == nil || !h.running {
		h.mu.Unlock()
		return nil
	}
	cancel := h.cancel
	h.cancel = nil
	h.mu.Unlock()
	cancel()
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep. Exposed for tests and for the
// startup sweep in main.
func (h *Housekeeping) RunOnce(ctx context.Context, now time.Time) {
	if h.sessions != nil {
		n, err := h.sessions.PurgeExpired(ctx, now)
		if err != nil {
			h.logError("sessions.purge", err)
		} else if n > 0 {
			h.logger.Printf("housekeeping removed %d dead sessions", n)
		}
	}
	if h.audits != nil {
		n, err := h.audits.PurgeOlderThan(ctx, now.Add(-auditRetention))
		if err != nil {
			h.logError("audit.purge", err)
		} else if n > 0 {
			h.logger.Printf("housekeeping removed %d old audit rows", n)
		}
	}
}

func (h *Housekeeping) logError(scope string, err error) {
	if h.logger == nil || err == nil {
		return
	}
	h.logger.Errorf("housekeeping %s: %v", scope, err)
}
