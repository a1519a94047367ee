package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixedratiolabs/frt-stress/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "test-passphrase")
	require.NoError(t, err)
	return s
}

func TestStore_UpsertAndLoadWorker(t *testing.T) {
	s := newTestStore(t)
	w := model.Worker{WorkerID: "dep-1", Kind: model.KindDeposit, Status: model.StatusCreated, CreatedAt: time.Now()}

	require.NoError(t, s.UpsertWorker(w))

	loaded, ok, err := s.LoadWorker("dep-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.WorkerID, loaded.WorkerID)
	assert.Equal(t, w.Kind, loaded.Kind)
}

func TestStore_WalletSecretIsSealedNotPlaintextOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "test-passphrase")
	require.NoError(t, err)

	w := model.Worker{WorkerID: "dep-1"}
	copy(w.WalletSecret[:], []byte("supersecretsupersecretsupersecretsupersecretsupersecretsuperse"))

	require.NoError(t, s.UpsertWorker(w))

	raw, err := os.ReadFile(filepath.Join(dir, workersFile))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "supersecret")

	loaded, ok, err := s.LoadWorker("dep-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.WalletSecret, loaded.WalletSecret)
}

func TestStore_LoadMissingWorkerFileReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.LoadWorker("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.LoadAllWorkers()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_DeleteWorker(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertWorker(model.Worker{WorkerID: "w1"}))
	require.NoError(t, s.DeleteWorker("w1"))

	_, ok, err := s.LoadWorker("w1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_WriteCreatesBackupOfPriorVersion(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertWorker(model.Worker{WorkerID: "w1", Status: model.StatusCreated}))
	require.NoError(t, s.UpsertWorker(model.Worker{WorkerID: "w1", Status: model.StatusRunning}))

	_, err := os.Stat(s.path(workersFile) + ".backup")
	assert.NoError(t, err)
}

func TestStore_AppendErrorIsBoundedToMaxRecentErrors(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < model.MaxRecentErrors+5; i++ {
		require.NoError(t, s.AppendError("w1", model.OperationError{Kind: "transport", Message: "x"}))
	}
	errs, err := s.LoadErrors("w1")
	require.NoError(t, err)
	assert.Len(t, errs, model.MaxRecentErrors)
}

func TestStore_SaveAndLoadPool(t *testing.T) {
	s := newTestStore(t)
	p := model.Pool{PoolID: solana.PublicKey{0x01}, RatioDisplay: "1:2"}
	require.NoError(t, s.SavePool(p))

	loaded, ok, err := s.LoadPool(p.PoolID.String())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.RatioDisplay, loaded.RatioDisplay)
}

func TestStore_ActivePoolsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveActivePools([]string{"pool-a", "pool-b"}))

	ids, err := s.LoadActivePools()
	require.NoError(t, err)
	assert.Equal(t, []string{"pool-a", "pool-b"}, ids)
}

func TestStore_SessionsAreAppendOnlyPerWorker(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveSession(model.Session{WorkerID: "w1", Reason: "manual stop"}, 1))
	require.NoError(t, s.SaveSession(model.Session{WorkerID: "w1", Reason: "auto-refill exhausted"}, 2))

	sessions, err := s.LoadSessions("w1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestStore_CoreWalletRoundTrip(t *testing.T) {
	s := newTestStore(t)
	w := model.CoreWallet{PublicKey: solana.PublicKey{0x09}, SecretSealed: []byte{1, 2, 3}}
	require.NoError(t, s.SaveCoreWallet(w))

	loaded, ok, err := s.LoadCoreWallet()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.PublicKey, loaded.PublicKey)
}

func TestStore_VersionProbeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.LoadVersionProbe()
	require.NoError(t, err)
	assert.False(t, found)

	probe := model.VersionProbe{Logs: []string{"Program log: FRT v0.9.3"}, ProbedAt: time.Now()}
	require.NoError(t, s.SaveVersionProbe(probe))

	loaded, found, err := s.LoadVersionProbe()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, probe.Logs, loaded.Logs)
	assert.Empty(t, loaded.Error)
}

func TestWriteAtomic_SurvivesCrashBetweenTempWriteAndRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "workers.json")

	require.NoError(t, writeAtomic(target, []byte(`{"v":1}`)))

	// Simulate a crash that left a stray temp file from an interrupted
	// second write: the next write must still succeed and the target
	// must end up with the new content, never truncated or partial.
	stray, err := os.CreateTemp(dir, ".tmp-*")
	require.NoError(t, err)
	_, err = stray.WriteString("partial garbage")
	require.NoError(t, err)
	require.NoError(t, stray.Close())

	require.NoError(t, writeAtomic(target, []byte(`{"v":2}`)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))

	backup, err := os.ReadFile(target + ".backup")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(backup))
}
