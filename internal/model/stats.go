package model

import "time"

// MaxRecentErrors bounds the FIFO error list kept per worker.
const MaxRecentErrors = 10

// OperationError is one entry in a worker's bounded recent-error list.
type OperationError struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
}

// Statistics are the per-worker counters, reset to zero on every Start.
type Statistics struct {
	WorkerID string `json:"worker_id"`

	SuccessByKind map[WorkerKind]uint64 `json:"success_by_kind"`
	FailureByKind map[WorkerKind]uint64 `json:"failure_by_kind"`

	VolumeProcessed  uint64 `json:"volume_processed"`
	PoolFeesPaid     uint64 `json:"pool_fees_paid"`
	NetworkFeesPaid  uint64 `json:"network_fees_paid"`
	AmountsShared    uint64 `json:"amounts_shared"`
	AmountsReceived  uint64 `json:"amounts_received"`
	EmptyOperations  uint64 `json:"empty_operations"`
	TotalOutputToken uint64 `json:"total_output_tokens"`

	RecentErrors []OperationError `json:"recent_errors"`
}

// NewStatistics returns the zero-initialized statistics for a fresh worker.
func NewStatistics(workerID string) *Statistics {
	return &Statistics{
		WorkerID:      workerID,
		SuccessByKind: map[WorkerKind]uint64{},
		FailureByKind: map[WorkerKind]uint64{},
		RecentErrors:  nil,
	}
}

// Reset zeroes counters at each Start, preserving the worker id.
func (s *Statistics) Reset() {
	workerID := s.WorkerID
	*s = *NewStatistics(workerID)
}

// RecordSuccess increments the success counter and accrues volume/fees.
func (s *Statistics) RecordSuccess(kind WorkerKind, volume, poolFee, networkFee uint64) {
	if s.SuccessByKind == nil {
		s.SuccessByKind = map[WorkerKind]uint64{}
	}
	s.SuccessByKind[kind]++
	s.VolumeProcessed += volume
	s.PoolFeesPaid += poolFee
	s.NetworkFeesPaid += networkFee
}

// RecordFailure increments the failure counter and appends a bounded error.
func (s *Statistics) RecordFailure(kind WorkerKind, errKind, message string) {
	if s.FailureByKind == nil {
		s.FailureByKind = map[WorkerKind]uint64{}
	}
	s.FailureByKind[kind]++
	s.RecentErrors = append(s.RecentErrors, OperationError{
		Timestamp: time.Now(),
		Kind:      errKind,
		Message:   message,
	})
	if len(s.RecentErrors) > MaxRecentErrors {
		s.RecentErrors = s.RecentErrors[len(s.RecentErrors)-MaxRecentErrors:]
	}
}
