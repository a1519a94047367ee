package reporting

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

func newMockRecorder(t *testing.T) (*MySQLRecorder, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return &MySQLRecorder{db: gormDB}, mock
}

func TestMySQLRecorder_RecordSession(t *testing.T) {
	recorder, mock := newMockRecorder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sessions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sess := model.Session{
		WorkerID:  "worker-1",
		PoolID:    "pool-1",
		StartedAt: time.Now().Add(-time.Hour),
		StoppedAt: time.Now(),
		Reason:    "operator requested stop",
		FinalStats: model.Statistics{
			WorkerID:        "worker-1",
			SuccessByKind:   map[model.WorkerKind]uint64{model.KindDeposit: 10},
			FailureByKind:   map[model.WorkerKind]uint64{model.KindDeposit: 1},
			VolumeProcessed: 5_000_000,
		},
		NetVolumeImpact: 5_000_000,
	}

	require.NoError(t, recorder.RecordSession(sess))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRecorder_RecordWorkerStat(t *testing.T) {
	recorder, mock := newMockRecorder(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `worker_stats`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	stats := model.Statistics{
		WorkerID:        "worker-2",
		SuccessByKind:   map[model.WorkerKind]uint64{model.KindSwapAB: 3},
		FailureByKind:   map[model.WorkerKind]uint64{},
		VolumeProcessed: 1_200,
	}

	require.NoError(t, recorder.RecordWorkerStat("pool-1", model.StatusRunning, stats))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRecord_TableName(t *testing.T) {
	require.Equal(t, "sessions", SessionRecord{}.TableName())
}

func TestWorkerStatRecord_TableName(t *testing.T) {
	require.Equal(t, "worker_stats", WorkerStatRecord{}.TableName())
}

func TestSumCounts(t *testing.T) {
	require.Equal(t, uint64(0), sumCounts(nil))
	require.Equal(t, uint64(7), sumCounts(map[model.WorkerKind]uint64{
		model.KindDeposit: 3,
		model.KindWithdraw: 4,
	}))
}
