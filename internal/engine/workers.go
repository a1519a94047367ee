package engine

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/worker"
)

// stopGracePeriod bounds how long StopWorker waits for a worker's Run
// goroutine to observe cancellation and return before forcing it into
// Error instead of Stopped.
const stopGracePeriod = 30 * time.Second

// runtimeHandle is everything Engine needs to track one live worker
// goroutine: the Runtime driving it, the cancel func that ends its
// Run loop, and a channel closed when Run returns.
type runtimeHandle struct {
	rt     *worker.Runtime
	cancel context.CancelFunc
	done   chan struct{}
}

// CreateWorkerRequest is everything the operator supplies to
// CreateWorker; the wallet keypair, Status and CreatedAt are filled in
// by CreateWorker itself.
type CreateWorkerRequest struct {
	WorkerID      string
	PoolID        string
	Kind          model.WorkerKind
	TokenSide     model.TokenSide
	InitialAmount uint64
	AutoRefill    bool
	ShareTokens   bool
}

// CreateWorker validates singleton and pool-existence constraints,
// generates a fresh wallet keypair, and persists the worker in Created
// state. It does not start the worker.
func (e *Engine) CreateWorker(req CreateWorkerRequest) (model.Worker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, ok := e.pools[req.PoolID]
	if !ok {
		return model.Worker{}, &errclass.EngineError{Number: errclass.EngineErrorPoolNotFound, Message: "unknown pool: " + req.PoolID}
	}

	if req.Kind.IsSwap() {
		if err := e.checkSwapSingleton(req.PoolID, req.Kind); err != nil {
			return model.Worker{}, err
		}
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return model.Worker{}, err
	}

	w := model.Worker{
		WorkerID:        req.WorkerID,
		Kind:            req.Kind,
		PoolID:          pool.PoolID,
		TokenSide:       req.TokenSide,
		InitialAmount:   req.InitialAmount,
		AutoRefill:      req.AutoRefill,
		ShareTokens:     req.ShareTokens,
		WalletSecret:    [64]byte(key),
		WalletPublicKey: key.PublicKey(),
		Status:          model.StatusCreated,
		CreatedAt:       time.Now(),
	}
	if err := w.Validate(); err != nil {
		return model.Worker{}, err
	}

	if err := e.store.UpsertWorker(w); err != nil {
		return model.Worker{}, err
	}
	if err := e.store.SaveStats(*model.NewStatistics(w.WorkerID)); err != nil {
		return model.Worker{}, err
	}
	e.workers[w.WorkerID] = w
	return w, nil
}

// checkSwapSingleton enforces at most one SwapAB and one SwapBA worker
// per pool. Caller must hold e.mu.
func (e *Engine) checkSwapSingleton(poolID string, kind model.WorkerKind) error {
	for _, w := range e.workers {
		if w.PoolID.String() == poolID && w.Kind == kind {
			return &errclass.EngineError{Number: errclass.EngineErrorDuplicateSwap, Message: "a " + string(kind) + " worker already exists for pool " + poolID}
		}
	}
	return nil
}

// StartWorker launches the Run goroutine for a Created/Stopped worker.
func (e *Engine) StartWorker(parent context.Context, workerID string) error {
	e.mu.Lock()
	if _, running := e.runtimes[workerID]; running {
		e.mu.Unlock()
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "worker already running: " + workerID}
	}
	w, ok := e.workers[workerID]
	if !ok {
		e.mu.Unlock()
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "unknown worker: " + workerID}
	}
	pool, ok := e.pools[w.PoolID.String()]
	if !ok {
		e.mu.Unlock()
		return &errclass.EngineError{Number: errclass.EngineErrorPoolNotFound, Message: "unknown pool for worker: " + workerID}
	}
	e.mu.Unlock()

	rt := worker.New(w, pool, e.workerCfg, worker.Deps{
		Gateway:     e.gateway,
		Store:       e.store,
		CoreWallet:  e.core,
		ProgramID:   e.programID,
		Registry:    e.snapshotWorkers,
		RetryPolicy: e.retryPolicy,
		Recorder:    e.recorder,
		Metrics:     e.metrics,
	})

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	e.mu.Lock()
	e.runtimes[workerID] = &runtimeHandle{rt: rt, cancel: cancel, done: done}
	e.mu.Unlock()

	go func() {
		defer close(done)
		runErr := rt.Run(ctx)
		e.onWorkerExit(workerID, rt, runErr)
	}()
	return nil
}

// onWorkerExit persists the final worker/stats snapshot once a Run
// goroutine returns, drops its runtimeHandle, and closes out the
// Start→Stop interval as a Session.
func (e *Engine) onWorkerExit(workerID string, rt *worker.Runtime, runErr error) {
	final := rt.Worker()
	stats := *rt.Stats()
	_ = e.store.UpsertWorker(final)
	_ = e.store.SaveStats(stats)

	reason := "stopped"
	if runErr != nil {
		reason = "error: " + runErr.Error()
	}
	now := time.Now()
	sess := model.Session{
		WorkerID:        workerID,
		PoolID:          final.PoolID.String(),
		StartedAt:       rt.StartedAt(),
		StoppedAt:       now,
		Reason:          reason,
		FinalStats:      stats,
		NetVolumeImpact: stats.VolumeProcessed,
	}
	if err := e.store.SaveSession(sess, now.UnixNano()); err != nil {
		e.logger.With(workerID).Warn().Err(err).Msg("failed to persist session")
	}
	if err := e.recorder.RecordSession(sess); err != nil {
		e.logger.With(workerID).Warn().Err(err).Msg("failed to mirror session")
	}

	e.mu.Lock()
	e.workers[workerID] = final
	delete(e.runtimes, workerID)
	e.mu.Unlock()

	if runErr != nil {
		e.logger.With(workerID).Warn().Err(runErr).Msg("worker exited with error")
	}
}

// StopWorker transitions workerID to Stopped and cancels its Run
// goroutine, waiting up to stopGracePeriod before forcing it to Error
// instead.
func (e *Engine) StopWorker(workerID string) error {
	e.mu.Lock()
	h, ok := e.runtimes[workerID]
	if !ok {
		w, known := e.workers[workerID]
		e.mu.Unlock()
		if !known {
			return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "unknown worker: " + workerID}
		}
		if w.Status == model.StatusRunning || w.Status == model.StatusPaused {
			w.Status = model.StatusStopped
			return e.persistWorker(w)
		}
		return nil
	}
	e.mu.Unlock()

	if err := h.rt.Stop(); err != nil {
		return err
	}
	h.cancel()

	select {
	case <-h.done:
	case <-time.After(stopGracePeriod):
		_ = h.rt.MarkError()
	}
	return nil
}

func (e *Engine) persistWorker(w model.Worker) error {
	e.mu.Lock()
	e.workers[w.WorkerID] = w
	e.mu.Unlock()
	return e.store.UpsertWorker(w)
}

// EmptyWorker runs the Empty command for workerID: against its live
// Runtime if currently started, or against a short-lived ephemeral one
// built from the persisted worker/pool record otherwise.
func (e *Engine) EmptyWorker(ctx context.Context, workerID string) error {
	e.mu.Lock()
	h, running := e.runtimes[workerID]
	w, ok := e.workers[workerID]
	if !ok {
		e.mu.Unlock()
		return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "unknown worker: " + workerID}
	}
	pool, poolOK := e.pools[w.PoolID.String()]
	e.mu.Unlock()
	if !poolOK {
		return &errclass.EngineError{Number: errclass.EngineErrorPoolNotFound, Message: "unknown pool for worker: " + workerID}
	}

	if running {
		return h.rt.Empty(ctx)
	}

	rt := worker.New(w, pool, e.workerCfg, worker.Deps{
		Gateway:     e.gateway,
		Store:       e.store,
		CoreWallet:  e.core,
		ProgramID:   e.programID,
		Registry:    e.snapshotWorkers,
		RetryPolicy: e.retryPolicy,
		Metrics:     e.metrics,
	})
	if err := rt.Empty(ctx); err != nil {
		return err
	}
	return e.store.SaveStats(*rt.Stats())
}

// DeleteWorker empties, stops, and removes workerID: the burn
// happens first so no balance is orphaned, the graceful stop ensures
// no goroutine is left referencing the deleted record, and only then
// is it dropped from every in-memory and persisted index.
func (e *Engine) DeleteWorker(ctx context.Context, workerID string) error {
	if err := e.EmptyWorker(ctx, workerID); err != nil {
		return err
	}
	if err := e.StopWorker(workerID); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.workers, workerID)
	delete(e.runtimes, workerID)
	e.mu.Unlock()

	return e.store.DeleteWorker(workerID)
}

// ListWorkers returns a snapshot of every worker the engine knows
// about, live or persisted-only.
func (e *Engine) ListWorkers() map[string]model.Worker {
	return e.snapshotWorkers()
}

// GetWorkerStatus returns the worker's current status.
func (e *Engine) GetWorkerStatus(workerID string) (model.WorkerStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.runtimes[workerID]; ok {
		return h.rt.Status(), true
	}
	w, ok := e.workers[workerID]
	return w.Status, ok
}

// snapshotWorkers builds the registry map TokenEconomy routing reads,
// preferring each running worker's live in-memory state over its last
// persisted snapshot.
func (e *Engine) snapshotWorkers() map[string]model.Worker {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]model.Worker, len(e.workers))
	for id, w := range e.workers {
		out[id] = w
	}
	for id, h := range e.runtimes {
		out[id] = h.rt.Worker()
	}
	return out
}
