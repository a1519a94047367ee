package reporting

import (
	"github.com/fixedratiolabs/frt-stress/internal/logging"
	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// asyncQueueSize bounds how many pending mirror writes Async will hold
// before it starts dropping newly submitted records rather than
// blocking the caller.
const asyncQueueSize = 256

type recordJob struct {
	session    *model.Session
	workerStat *workerStatJob
}

type workerStatJob struct {
	poolID string
	status model.WorkerStatus
	stats  model.Statistics
}

// Async wraps a Recorder so every call returns immediately: the actual
// write happens on a single background goroutine draining a bounded
// channel. A full queue drops the job and logs it; the mirror is
// never allowed to slow down or fail a worker's own operation cycle.
type Async struct {
	underlying Recorder
	logger     logging.Logger
	jobs       chan recordJob
	done       chan struct{}
}

// NewAsync starts the background drain goroutine and returns the
// wrapped Recorder.
func NewAsync(underlying Recorder, logger logging.Logger) *Async {
	a := &Async{
		underlying: underlying,
		logger:     logger,
		jobs:       make(chan recordJob, asyncQueueSize),
		done:       make(chan struct{}),
	}
	go a.drain()
	return a
}

func (a *Async) drain() {
	defer close(a.done)
	for job := range a.jobs {
		var err error
		switch {
		case job.session != nil:
			err = a.underlying.RecordSession(*job.session)
		case job.workerStat != nil:
			err = a.underlying.RecordWorkerStat(job.workerStat.poolID, job.workerStat.status, job.workerStat.stats)
		}
		if err != nil {
			a.logger.Warn().Err(err).Msg("reporting mirror write failed")
		}
	}
}

// RecordSession enqueues sess for the background goroutine, dropping it
// with a logged warning if the queue is full.
func (a *Async) RecordSession(sess model.Session) error {
	select {
	case a.jobs <- recordJob{session: &sess}:
	default:
		a.logger.Warn().Str("worker_id", sess.WorkerID).Msg("reporting queue full, dropping session record")
	}
	return nil
}

// RecordWorkerStat enqueues a statistics snapshot, dropping it with a
// logged warning if the queue is full.
func (a *Async) RecordWorkerStat(poolID string, status model.WorkerStatus, stats model.Statistics) error {
	select {
	case a.jobs <- recordJob{workerStat: &workerStatJob{poolID: poolID, status: status, stats: stats}}:
	default:
		a.logger.Warn().Str("worker_id", stats.WorkerID).Msg("reporting queue full, dropping stat record")
	}
	return nil
}

// Close stops accepting new jobs, waits for the queue to drain, then
// closes the underlying Recorder.
func (a *Async) Close() error {
	close(a.jobs)
	<-a.done
	return a.underlying.Close()
}
