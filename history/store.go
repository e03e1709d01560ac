package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidArg indicates malformed construction or query parameters.
	ErrInvalidArg = errors.New("invalid argument")
)

// Store persists run records.
type Store interface {
	// Record stores rec. rec.Id must be set by the caller.
	Record(rec RunRecord) error
	// FindByTask returns records of the task in finish order, oldest first,
	// skipping offset records and returning at most limit records.
	// limit <= 0 means no limit.
	FindByTask(taskId string, offset, limit int) ([]RunRecord, error)
}

// FilterMeta returns records whose Meta satisfies the gjson path query,
// e.g. FilterMeta(records, "attempt", "3") or a nested path like "job.kind".
// Records with no Meta never match.
func FilterMeta(records []RunRecord, path string, value string) []RunRecord {
	var matched []RunRecord
	for _, rec := range records {
		if len(rec.Meta) == 0 {
			continue
		}
		if result := gjson.GetBytes(rec.Meta, path); result.Exists() && result.String() == value {
			matched = append(matched, rec)
		}
	}
	return matched
}

// MemoryStore is an in-memory Store holding at most its capacity of records.
// Once full, storing a new record evicts the oldest one.
type MemoryStore struct {
	mu      sync.Mutex
	records []RunRecord
	cap     int
}

// NewMemoryStore returns a MemoryStore retaining at most capacity records.
//
// It returns ErrInvalidArg if capacity is zero or negative.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive but is %d", ErrInvalidArg, capacity)
	}
	return &MemoryStore{
		records: make([]RunRecord, 0, capacity),
		cap:     capacity,
	}, nil
}

func (s *MemoryStore) Record(rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == s.cap {
		copy(s.records, s.records[1:])
		s.records = s.records[:len(s.records)-1]
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) FindByTask(taskId string, offset, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []RunRecord
	for _, rec := range s.records {
		if rec.TaskId == taskId {
			found = append(found, rec)
		}
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(found) {
		return nil, nil
	}
	found = found[offset:]
	if limit > 0 && limit < len(found) {
		found = found[:limit]
	}
	return found, nil
}

// Len returns the number of retained records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
