package engine

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shirou/gopsutil/process"
	"golang.org/x/sync/errgroup"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/logging"
	"github.com/fixedratiolabs/frt-stress/internal/metrics"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/reporting"
	"github.com/fixedratiolabs/frt-stress/internal/store"
	"github.com/fixedratiolabs/frt-stress/internal/worker"
)

// State is the engine's top-level lifecycle state.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateStarted  State = "started"
	StatePausing  State = "pausing"
	StatePaused   State = "paused"
	StateResuming State = "resuming"
	StateStopping State = "stopping"
	StateError    State = "error"
)

var allowedTransitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateStarted, StateError},
	StateStarted:  {StatePausing, StateStopping, StateError},
	StatePausing:  {StatePaused, StateError},
	StatePaused:   {StateResuming, StateStopping, StateError},
	StateResuming: {StateStarted, StateError},
	StateStopping: {StateStopped, StateError},
	StateError:    {},
}

// Config bundles the engine-level tunables derived from configs.Config:
// pool target, the worker cycle Config every Runtime shares, and the
// RetryPolicy applied to every submitted transaction.
type Config struct {
	TargetActivePools int
	SecretPassphrase  string
	WorkerConfig      worker.Config
	RetryPolicy       errclass.RetryPolicy
}

// Engine owns the pool registry and every worker's lifecycle. All
// exported methods are safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	state State

	cfg         Config
	workerCfg   worker.Config
	retryPolicy errclass.RetryPolicy
	programID   solana.PublicKey

	gateway  ChainGateway
	store    *store.Store
	core     *CoreWallet
	metrics  *metrics.Metrics
	logger   logging.Logger
	recorder reporting.Recorder

	pools    map[string]model.Pool
	workers  map[string]model.Worker
	runtimes map[string]*runtimeHandle

	bg      *background
	version string
}

// New constructs an Engine in the Stopped state. It does not touch the
// chain or the store until Start is called. A nil recorder mirrors
// nothing (reporting.Noop).
func New(programID solana.PublicKey, gw ChainGateway, st *store.Store, mtr *metrics.Metrics, logger logging.Logger, recorder reporting.Recorder, cfg Config) *Engine {
	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = errclass.DefaultRetryPolicy()
	}
	if cfg.WorkerConfig.MaxDelayMS == 0 {
		cfg.WorkerConfig = worker.DefaultConfig()
	}
	if recorder == nil {
		recorder = reporting.Noop()
	}
	return &Engine{
		state:       StateStopped,
		cfg:         cfg,
		workerCfg:   cfg.WorkerConfig,
		retryPolicy: cfg.RetryPolicy,
		programID:   programID,
		gateway:     gw,
		store:       st,
		metrics:     mtr,
		logger:      logger,
		recorder:    recorder,
		pools:       map[string]model.Pool{},
		workers:     map[string]model.Worker{},
		runtimes:    map[string]*runtimeHandle{},
	}
}

// Version returns the contract version line recorded at Start, empty
// if the probe failed or Start has not run.
func (e *Engine) Version() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) transition(to State) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ok := range allowedTransitions[e.state] {
		if ok == to {
			e.state = to
			return nil
		}
	}
	return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "invalid engine state transition: " + string(e.state) + " -> " + string(to)}
}

// Start bootstraps the core wallet, the one-time treasury, probes the
// deployed program's version, validates and tops up the pool registry
// to cfg.TargetActivePools, reloads every persisted worker and resumes
// the Run loop of each one persisted as Running or Paused, then launches
// the background services (performance monitor, pool management).
func (e *Engine) Start(ctx context.Context) error {
	if err := e.transition(StateStarting); err != nil {
		return err
	}

	core, err := LoadOrCreateCoreWallet(ctx, e.store, e.gateway, e.cfg.SecretPassphrase)
	if err != nil {
		_ = e.transition(StateError)
		return err
	}
	e.mu.Lock()
	e.core = core
	e.mu.Unlock()

	if err := e.ensureTreasury(ctx); err != nil {
		_ = e.transition(StateError)
		return err
	}

	probe := model.VersionProbe{ProbedAt: time.Now()}
	if logs, err := probeVersion(ctx, e.gateway, e.programID, core.signerKey()); err != nil {
		probe.Error = err.Error()
		e.logger.Warn().Err(err).Msg("version probe failed, continuing")
	} else {
		probe.Logs = logs
		e.logger.Info().Strs("logs", logs).Msg("version probe")
	}
	if err := e.store.SaveVersionProbe(probe); err != nil {
		e.logger.Warn().Err(err).Msg("failed to persist version probe")
	}
	e.mu.Lock()
	if len(probe.Logs) > 0 {
		e.version = probe.Logs[len(probe.Logs)-1]
	}
	e.mu.Unlock()

	live, err := e.validatePools(ctx)
	if err != nil {
		_ = e.transition(StateError)
		return err
	}
	live, err = e.ensureTargetPools(ctx, live, e.cfg.TargetActivePools)
	if err != nil {
		_ = e.transition(StateError)
		return err
	}

	e.mu.Lock()
	e.pools = live
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.ActivePools.Set(float64(len(live)))
	}

	persisted, err := e.store.LoadAllWorkers()
	if err != nil {
		_ = e.transition(StateError)
		return err
	}
	e.mu.Lock()
	e.workers = persisted
	toResume := make([]string, 0, len(persisted))
	for id, w := range persisted {
		if w.Status == model.StatusRunning || w.Status == model.StatusPaused {
			toResume = append(toResume, id)
		}
	}
	e.mu.Unlock()

	for _, id := range toResume {
		if err := e.StartWorker(ctx, id); err != nil {
			e.logger.With(id).Warn().Err(err).Msg("failed to resume worker on Start")
		}
	}

	e.startBackground(ctx)

	return e.transition(StateStarted)
}

// Stop cancels every running worker and waits (bounded by
// stopGracePeriod) for each to exit, fanning the waits out with
// errgroup.
func (e *Engine) Stop(ctx context.Context) error {
	if err := e.transition(StateStopping); err != nil {
		return err
	}

	e.mu.Lock()
	ids := make([]string, 0, len(e.runtimes))
	for id := range e.runtimes {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return e.StopWorker(id)
		})
	}
	_ = g.Wait() // per-worker StopWorker errors are discarded; Stop always completes

	e.stopBackground()

	return e.transition(StateStopped)
}

// Pause transitions every Running worker to Paused without cancelling
// its context; Resume reverses it. Unlike Stop, Run's goroutines keep
// running and simply skip cycles while paused.
func (e *Engine) Pause() error {
	if err := e.transition(StatePausing); err != nil {
		return err
	}
	e.mu.Lock()
	handles := make([]*runtimeHandle, 0, len(e.runtimes))
	for _, h := range e.runtimes {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		if h.rt.Status() == model.StatusRunning {
			_ = h.rt.Pause()
		}
	}
	return e.transition(StatePaused)
}

// Resume reverses Pause.
func (e *Engine) Resume() error {
	if err := e.transition(StateResuming); err != nil {
		return err
	}
	e.mu.Lock()
	handles := make([]*runtimeHandle, 0, len(e.runtimes))
	for _, h := range e.runtimes {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		if h.rt.Status() == model.StatusPaused {
			_ = h.rt.Resume()
		}
	}
	return e.transition(StateStarted)
}

// Health reports the engine's current state, worker counts and process
// resource usage.
func (e *Engine) Health() model.Health {
	workers := e.snapshotWorkers()
	var running, failed int
	for _, w := range workers {
		switch w.Status {
		case model.StatusRunning:
			running++
		case model.StatusError:
			failed++
		}
	}

	if e.metrics != nil {
		e.metrics.SetHealth(len(workers), running, failed)
	}

	h := model.Health{
		State:        string(e.State()),
		TotalWorkers: len(workers),
		Running:      running,
		Failed:       failed,
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		h.ProcessID = p.Pid
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			h.MemMB = mem.RSS / (1024 * 1024)
		}
	}
	return h
}
