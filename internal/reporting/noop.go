package reporting

import "github.com/fixedratiolabs/frt-stress/internal/model"

// noopRecorder discards every record, used when configs.Config.MySQLDSN
// is empty so callers never need a nil check.
type noopRecorder struct{}

// Noop returns a Recorder that discards everything it's given.
func Noop() Recorder { return noopRecorder{} }

func (noopRecorder) RecordSession(model.Session) error                                   { return nil }
func (noopRecorder) RecordWorkerStat(string, model.WorkerStatus, model.Statistics) error { return nil }
func (noopRecorder) Close() error                                                         { return nil }
