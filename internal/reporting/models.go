package reporting

import (
	"time"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// SessionRecord mirrors model.Session for the optional MySQL mirror.
// Field names intentionally match the JSON store's model.Session so an
// operator correlating the two doesn't have to remember a second
// vocabulary.
type SessionRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	WorkerID  string    `gorm:"index;not null"`
	PoolID    string    `gorm:"index;not null"`
	StartedAt time.Time `gorm:"not null"`
	StoppedAt time.Time `gorm:"not null"`
	Reason    string    `gorm:"type:varchar(255)"`

	NetVolumeImpact uint64 `gorm:"not null"`

	SuccessCount     uint64 `gorm:"not null"`
	FailureCount     uint64 `gorm:"not null"`
	VolumeProcessed  uint64 `gorm:"not null"`
	PoolFeesPaid     uint64 `gorm:"not null"`
	NetworkFeesPaid  uint64 `gorm:"not null"`
	AmountsShared    uint64 `gorm:"not null"`
	AmountsReceived  uint64 `gorm:"not null"`
	EmptyOperations  uint64 `gorm:"not null"`
	TotalOutputToken uint64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (SessionRecord) TableName() string {
	return "sessions"
}

// WorkerStatRecord is a point-in-time snapshot of one worker's counters,
// written each time WorkerRuntime flushes its statistics so an operator
// can chart volume over time without replaying the JSON store.
type WorkerStatRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	WorkerID  string    `gorm:"index;not null"`
	PoolID    string    `gorm:"index;not null"`
	Status    string    `gorm:"type:varchar(32);not null"`
	Timestamp time.Time `gorm:"index;not null"`

	SuccessCount    uint64 `gorm:"not null"`
	FailureCount    uint64 `gorm:"not null"`
	VolumeProcessed uint64 `gorm:"not null"`
	PoolFeesPaid    uint64 `gorm:"not null"`
	NetworkFeesPaid uint64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (WorkerStatRecord) TableName() string {
	return "worker_stats"
}

func sumCounts(byKind map[model.WorkerKind]uint64) uint64 {
	var total uint64
	for _, v := range byKind {
		total += v
	}
	return total
}
