// Package reporting mirrors session and worker-statistics history into
// an optional MySQL database. The JSON store under internal/store is
// always authoritative; this package exists purely so an operator can
// run SQL against historical runs instead of replaying JSON files. It
// is wired up only when configs.Config.MySQLDSN is non-empty and is
// never allowed to block or fail a worker's own operation cycle.
package reporting

import "github.com/fixedratiolabs/frt-stress/internal/model"

// Recorder is the narrow mirror surface Engine and WorkerRuntime write
// through. Implementations must not block the caller for longer than a
// single local queue push.
type Recorder interface {
	RecordSession(sess model.Session) error
	RecordWorkerStat(poolID string, status model.WorkerStatus, stats model.Statistics) error
	Close() error
}
