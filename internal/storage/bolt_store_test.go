package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/runner"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreAt(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id string, ts time.Time, gflops float64) RunRecord {
	results := []report.SolutionResult{
		{
			Problem:  "gemm_512x512x512",
			Solution: "MT64x64x16_WG256",
			Metrics: map[report.ResultKey]float64{
				report.TimeUS:      500,
				report.SpeedGFlops: gflops,
			},
		},
	}
	return RunRecord{
		ID:        id,
		Timestamp: ts,
		Config:    runner.DefaultConfig(),
		Results:   results,
		Summary:   Summarize(results, 2*time.Second),
	}
}

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)
	rec := sampleRecord("run-1", time.Now().UTC(), 4000)
	require.NoError(t, s.Save(rec))

	got, err := s.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Summary.BestSolution, got.Summary.BestSolution)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 4000.0, got.Results[0].GFlops())
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	base := time.Now().UTC()

	// Insertion order and id order both differ from time order.
	require.NoError(t, s.Save(sampleRecord("b-middle", base.Add(-time.Hour), 1000)))
	require.NoError(t, s.Save(sampleRecord("a-newest", base, 2000)))
	require.NoError(t, s.Save(sampleRecord("c-oldest", base.Add(-2*time.Hour), 3000)))

	recs := s.List()
	require.Len(t, recs, 3)
	assert.Equal(t, "a-newest", recs[0].ID)
	assert.Equal(t, "b-middle", recs[1].ID)
	assert.Equal(t, "c-oldest", recs[2].ID)
}

func TestSaveOverwritesSameID(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(sampleRecord("run-1", time.Now().UTC(), 1000)))
	require.NoError(t, s.Save(sampleRecord("run-1", time.Now().UTC(), 2000)))

	recs := s.List()
	require.Len(t, recs, 1)
	assert.Equal(t, 2000.0, recs[0].Summary.BestGFlops)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewStoreAt(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(sampleRecord("run-1", time.Now().UTC(), 4000)))
	require.NoError(t, s.Close())

	s2, err := NewStoreAt(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}

func TestSummarize(t *testing.T) {
	results := []report.SolutionResult{
		{Solution: "slow", Problem: "p", Metrics: map[report.ResultKey]float64{report.SpeedGFlops: 1000, report.TimeUS: 900}},
		{Solution: "fast", Problem: "p", Metrics: map[report.ResultKey]float64{report.SpeedGFlops: 5000, report.TimeUS: 180}},
	}

	sum := Summarize(results, 1500*time.Millisecond)
	assert.Equal(t, 2, sum.SolutionsMeasured)
	assert.Equal(t, "fast", sum.BestSolution)
	assert.Equal(t, 5000.0, sum.BestGFlops)
	assert.Equal(t, 180.0, sum.BestTimeUs)
	assert.InDelta(t, 1500.0, sum.TotalDeviceTimeMs, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, 0)
	assert.Zero(t, sum.SolutionsMeasured)
	assert.Empty(t, sum.BestSolution)
}
