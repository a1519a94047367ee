package engine

import (
	"context"
	"sync"
	"time"
)

// Background-service cadences. The performance monitor refreshes the
// health gauges; the pool manager re-validates the active pool set
// against the chain and tops it back up if pools went stale mid-run.
const (
	perfMonitorInterval = 30 * time.Second
	poolManageInterval  = 5 * time.Minute
)

// background tracks the engine's long-lived service goroutines so Stop
// can tear them down in reverse start order.
type background struct {
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

// startBackground launches the performance monitor and the
// pool-management service. Caller must not hold e.mu.
func (e *Engine) startBackground(parent context.Context) {
	e.bg = &background{}
	for _, svc := range []func(context.Context){e.runPerfMonitor, e.runPoolManager} {
		ctx, cancel := context.WithCancel(parent)
		e.bg.cancels = append(e.bg.cancels, cancel)
		e.bg.wg.Add(1)
		svc := svc
		go func() {
			defer e.bg.wg.Done()
			svc(ctx)
		}()
	}
}

// stopBackground cancels the services in reverse start order and waits
// for them to exit.
func (e *Engine) stopBackground() {
	if e.bg == nil {
		return
	}
	for i := len(e.bg.cancels) - 1; i >= 0; i-- {
		e.bg.cancels[i]()
	}
	e.bg.wg.Wait()
	e.bg = nil
}

// runPerfMonitor refreshes the health gauges on a fixed cadence.
func (e *Engine) runPerfMonitor(ctx context.Context) {
	ticker := time.NewTicker(perfMonitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h := e.Health()
			e.logger.Debug().
				Str("state", h.State).
				Int("running", h.Running).
				Int("failed", h.Failed).
				Uint64("mem_mb", h.MemMB).
				Msg("performance monitor")
		}
	}
}

// runPoolManager periodically re-validates the active pool set and tops
// it back up to the configured target when pools have gone stale.
func (e *Engine) runPoolManager(ctx context.Context) {
	ticker := time.NewTicker(poolManageInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			live, err := e.validatePools(ctx)
			if err != nil {
				e.logger.Warn().Err(err).Msg("pool revalidation failed")
				continue
			}
			live, err = e.ensureTargetPools(ctx, live, e.cfg.TargetActivePools)
			if err != nil {
				e.logger.Warn().Err(err).Msg("pool top-up failed")
			}
			e.mu.Lock()
			e.pools = live
			e.mu.Unlock()
			if e.metrics != nil {
				e.metrics.ActivePools.Set(float64(len(live)))
			}
		}
	}
}
