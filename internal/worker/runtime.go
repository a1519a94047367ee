// Package worker implements the per-worker cooperative task:
// WorkerRuntime. Each Runtime drives exactly one model.Worker through
// its operation cycle, isolated from every other worker except for the
// on-chain token transfers TokenEconomy routes between them.
package worker

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/metrics"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/reporting"
	"github.com/fixedratiolabs/frt-stress/internal/store"
)

// ChainGateway is the narrow surface Runtime needs from RpcGateway,
// kept as an interface so tests can substitute a fake.
type ChainGateway interface {
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	GetTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (solana.Hash, error)
	Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmSignature(ctx context.Context, sig solana.Signature, timeout time.Duration) error
	AirdropStaircase(ctx context.Context, pubkey solana.PublicKey) error
}

// CoreFunder is the narrow CoreWallet surface Runtime needs to mint or
// refund tokens on InsufficientFunds/autoRefill.
type CoreFunder interface {
	MintTo(ctx context.Context, mint, destination solana.PublicKey, amount uint64) error
}

// Clock abstracts time.Now/time.Sleep for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Deps bundles a Runtime's external collaborators.
type Deps struct {
	Gateway     ChainGateway
	Store       *store.Store
	CoreWallet  CoreFunder
	ProgramID   solana.PublicKey
	Registry    func() map[string]model.Worker // snapshot for TokenEconomy routing
	Clock       Clock
	RetryPolicy errclass.RetryPolicy
	Recorder    reporting.Recorder // mirrors periodic stats to the reporting store; nil is fine, treated as a no-op
	Metrics     *metrics.Metrics   // op counters; nil is fine, treated as a no-op
}

// Config is the per-worker tunable behavior: funding thresholds,
// amount ceilings, pacing, and stats-flush cadence.
type Config struct {
	MinSOLBalance       uint64
	SOLAirdropAmount    uint64
	AutoRefillThreshold uint64
	MaxSwapPercent      int
	MaxDepositPercent   int
	MaxWithdrawPercent  int
	MinDelayMS          int
	MaxDelayMS          int
	PersistEveryNOps    int
}

// DefaultConfig mirrors configs.Default's runtime-facing fields.
func DefaultConfig() Config {
	return Config{
		MinSOLBalance:       100_000_000,
		SOLAirdropAmount:    1_500_000_000,
		AutoRefillThreshold: 100_000_000,
		MaxSwapPercent:      2,
		MaxDepositPercent:   5,
		MaxWithdrawPercent:  5,
		MinDelayMS:          750,
		MaxDelayMS:          2000,
		PersistEveryNOps:    5,
	}
}

// Runtime drives one Worker's cooperative loop.
type Runtime struct {
	worker  model.Worker
	pool    model.Pool
	cfg     Config
	deps    Deps
	stats   *model.Statistics
	rng     *rand.Rand
	breaker *errclass.Breaker

	statusMu sync.Mutex // guards worker.Status/LastOperationAt against Engine's Pause/Resume calls

	startedAt    time.Time
	opsSinceSave int
}

// New constructs a Runtime for worker operating against pool, seeded
// deterministically from the worker's id so stress replays are
// reproducible.
func New(w model.Worker, pool model.Pool, cfg Config, deps Deps) *Runtime {
	return &Runtime{
		worker:  w,
		pool:    pool,
		cfg:     cfg,
		deps:    deps,
		stats:   model.NewStatistics(w.WorkerID),
		rng:     rand.New(rand.NewSource(seedFromWorkerID(w.WorkerID))),
		breaker: errclass.NewBreaker(5*time.Minute, 20),
	}
}

func seedFromWorkerID(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}

// Status returns the worker's current lifecycle status.
func (r *Runtime) Status() model.WorkerStatus {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.worker.Status
}

// Stats returns the live in-memory statistics for this worker.
func (r *Runtime) Stats() *model.Statistics { return r.stats }

// StartedAt returns the time Run last transitioned this worker into
// Running, zero if Run has not been called yet.
func (r *Runtime) StartedAt() time.Time { return r.startedAt }

// Worker returns a copy of the worker record, reflecting the current
// status.
func (r *Runtime) Worker() model.Worker {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.worker
}

// Pause transitions a Running worker to Paused without cancelling its
// context or touching its wallet/stats; Run's loop observes the new
// status at its next suspension point and skips cycles until Resume.
func (r *Runtime) Pause() error { return r.transition(model.StatusPaused) }

// Resume transitions a Paused worker back to Running.
func (r *Runtime) Resume() error { return r.transition(model.StatusRunning) }

// Stop transitions a Running or Paused worker to Stopped. It only
// updates the in-memory state machine; the caller is responsible for
// cancelling the context Run is driven by so the loop actually exits.
func (r *Runtime) Stop() error { return r.transition(model.StatusStopped) }

// MarkError forcibly transitions the worker to Error, used by Engine
// when a worker's Run goroutine fails to exit within its graceful-stop
// deadline.
func (r *Runtime) MarkError() error {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.worker.Status = model.StatusError
	r.worker.LastOperationAt = r.now()
	return nil
}

// transition enforces the Created→Running→{Paused|Stopped|Error},
// Paused→{Running|Stopped}, Stopped→Running state machine.
func (r *Runtime) transition(to model.WorkerStatus) error {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()

	from := r.worker.Status
	allowed := map[model.WorkerStatus][]model.WorkerStatus{
		model.StatusCreated: {model.StatusRunning},
		model.StatusRunning: {model.StatusPaused, model.StatusStopped, model.StatusError},
		model.StatusPaused:  {model.StatusRunning, model.StatusStopped},
		model.StatusStopped: {model.StatusRunning},
		model.StatusError:   {},
	}
	for _, ok := range allowed[from] {
		if ok == to {
			r.worker.Status = to
			r.worker.LastOperationAt = r.now()
			return nil
		}
	}
	return &errclass.EngineError{Number: errclass.EngineErrorInvalidState, Message: "invalid worker state transition: " + string(from) + " -> " + string(to)}
}

func (r *Runtime) now() time.Time {
	if r.deps.Clock != nil {
		return r.deps.Clock.Now()
	}
	return time.Now()
}

func (r *Runtime) sleep(ctx context.Context, d time.Duration) error {
	if r.deps.Clock != nil {
		return r.deps.Clock.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// recordOpMetric feeds the shared ops counter, if one was wired in.
func (r *Runtime) recordOpMetric(result string) {
	if r.deps.Metrics != nil {
		r.deps.Metrics.RecordOp(string(r.worker.Kind), result)
	}
}

// activeRegistry snapshots the current worker registry for economy
// routing decisions, falling back to an empty map if the caller never
// wired one (e.g. in isolated tests of non-routing behavior).
func (r *Runtime) activeRegistry() map[string]model.Worker {
	if r.deps.Registry == nil {
		return map[string]model.Worker{}
	}
	return r.deps.Registry()
}
