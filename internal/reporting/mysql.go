package reporting

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

// MySQLRecorder implements Recorder using GORM and MySQL.
type MySQLRecorder struct {
	db *gorm.DB
}

// NewMySQLRecorder opens dsn and migrates the mirror schema.
// dsn format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("reporting: connect to MySQL: %w", err)
	}
	return NewMySQLRecorderWithDB(db)
}

// NewMySQLRecorderWithDB wraps an existing GORM DB instance, migrating
// the mirror schema onto it. NewMySQLRecorder calls it once the DSN
// connection is open.
func NewMySQLRecorderWithDB(db *gorm.DB) (*MySQLRecorder, error) {
	if err := db.AutoMigrate(&SessionRecord{}, &WorkerStatRecord{}); err != nil {
		return nil, fmt.Errorf("reporting: migrate schema: %w", err)
	}
	return &MySQLRecorder{db: db}, nil
}

// RecordSession mirrors a completed Start→Stop session.
func (r *MySQLRecorder) RecordSession(sess model.Session) error {
	record := SessionRecord{
		WorkerID:        sess.WorkerID,
		PoolID:          sess.PoolID,
		StartedAt:       sess.StartedAt,
		StoppedAt:       sess.StoppedAt,
		Reason:          sess.Reason,
		NetVolumeImpact: sess.NetVolumeImpact,

		SuccessCount:     sumCounts(sess.FinalStats.SuccessByKind),
		FailureCount:     sumCounts(sess.FinalStats.FailureByKind),
		VolumeProcessed:  sess.FinalStats.VolumeProcessed,
		PoolFeesPaid:     sess.FinalStats.PoolFeesPaid,
		NetworkFeesPaid:  sess.FinalStats.NetworkFeesPaid,
		AmountsShared:    sess.FinalStats.AmountsShared,
		AmountsReceived:  sess.FinalStats.AmountsReceived,
		EmptyOperations:  sess.FinalStats.EmptyOperations,
		TotalOutputToken: sess.FinalStats.TotalOutputToken,
	}
	if result := r.db.Create(&record); result.Error != nil {
		return fmt.Errorf("reporting: record session: %w", result.Error)
	}
	return nil
}

// RecordWorkerStat mirrors a single point-in-time statistics snapshot.
func (r *MySQLRecorder) RecordWorkerStat(poolID string, status model.WorkerStatus, stats model.Statistics) error {
	record := WorkerStatRecord{
		WorkerID:        stats.WorkerID,
		PoolID:          poolID,
		Status:          string(status),
		Timestamp:       time.Now(),
		SuccessCount:    sumCounts(stats.SuccessByKind),
		FailureCount:    sumCounts(stats.FailureByKind),
		VolumeProcessed: stats.VolumeProcessed,
		PoolFeesPaid:    stats.PoolFeesPaid,
		NetworkFeesPaid: stats.NetworkFeesPaid,
	}
	if result := r.db.Create(&record); result.Error != nil {
		return fmt.Errorf("reporting: record worker stat: %w", result.Error)
	}
	return nil
}

// GetDB returns the underlying GORM DB instance for ad hoc queries.
func (r *MySQLRecorder) GetDB() *gorm.DB {
	return r.db
}

// Close closes the database connection.
func (r *MySQLRecorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("reporting: get underlying DB: %w", err)
	}
	return sqlDB.Close()
}
