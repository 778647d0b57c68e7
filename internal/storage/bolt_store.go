// Package storage persists benchmark run history in a local bbolt database,
// so past runs can be listed and re-exported without re-measuring.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/runner"
)

const (
	BucketRuns = "runs"
)

// RunRecord is one stored benchmarking session.
type RunRecord struct {
	ID        string                  `json:"id"`
	Timestamp time.Time               `json:"timestamp"`
	Config    runner.Config           `json:"config"`
	Results   []report.SolutionResult `json:"results"`
	Summary   RunSummary              `json:"summary"`
}

// RunSummary is the headline of a run.
type RunSummary struct {
	SolutionsMeasured int     `json:"solutions_measured"`
	BestSolution      string  `json:"best_solution"`
	BestProblem       string  `json:"best_problem"`
	BestGFlops        float64 `json:"best_gflops"`
	BestTimeUs        float64 `json:"best_time_us"`
	TotalDeviceTimeMs float64 `json:"total_device_time_ms"`
}

// Summarize derives a RunSummary from a result set.
func Summarize(results []report.SolutionResult, totalDeviceTime time.Duration) RunSummary {
	s := RunSummary{
		SolutionsMeasured: len(results),
		TotalDeviceTimeMs: float64(totalDeviceTime) / float64(time.Millisecond),
	}
	if best := report.Best(results); best != nil {
		s.BestSolution = best.Solution
		s.BestProblem = best.Problem
		s.BestGFlops = best.GFlops()
		s.BestTimeUs = best.TimeUs()
	}
	return s
}

// Store wraps the history database.
type Store struct {
	db       *bbolt.DB
	filePath string
}

// NewStore opens (or creates) the history database under the user's home.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".hipblaslt-bench")
	return NewStoreAt(filepath.Join(dir, "history.db"))
}

// NewStoreAt opens a history database at an explicit path.
func NewStoreAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		filePath: path,
	}, nil
}

// Close releases the database. History is persistent; nothing is removed.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores one run record keyed by its id.
func (s *Store) Save(rec RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.ID), data)
	})
}

// List returns all stored runs, newest first.
func (s *Store) List() []RunRecord {
	var recs []RunRecord

	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		return b.ForEach(func(_, v []byte) error {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err == nil {
				recs = append(recs, rec)
			}
			return nil
		})
	})

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})
	return recs
}

// Get loads one run by id.
func (s *Store) Get(id string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("run %s not found", id)
		}
		return json.Unmarshal(v, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
