// Package history keeps the append-only log of evaluation runs.
package history

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"agentevals/internal/atomicfile"
)

// TimestampLayout is ISO-8601 local time with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// RunMetadata identifies one evaluation run.
type RunMetadata struct {
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
	Dataset   string `json:"dataset"`
	EvalType  string `json:"eval_type"`
	GitCommit string `json:"git_commit"`
}

// Record is one history entry: run metadata plus its score.
type Record struct {
	RunMetadata
	Accuracy float64 `json:"accuracy"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	CSVPath  string  `json:"csv_path"`
}

// BuildRunMetadata stamps a run at now. The run id is "{evalType}_{timestamp}".
func BuildRunMetadata(now time.Time, model, dataset, evalType, commit string) RunMetadata {
	timestamp := now.Format(TimestampLayout)
	return RunMetadata{
		RunID:     evalType + "_" + timestamp,
		Timestamp: timestamp,
		Model:     model,
		Dataset:   dataset,
		EvalType:  evalType,
		GitCommit: commit,
	}
}

// Store persists records as a single JSON array file. Writes are serialized
// and replace the file atomically.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns every record in storage order. A missing file yields no records.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Record, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	records := []Record{}
	if _, err := atomicfile.ReadJSON(s.path, &records); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Append adds record to the end of the log and rewrites the file.
func (s *Store) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	records = append(records, record)
	if err := atomicfile.WriteJSON(s.path, records); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// SortNewestFirst returns a copy of records ordered by timestamp, newest first.
func SortNewestFirst(records []Record) []Record {
	sorted := append([]Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}
