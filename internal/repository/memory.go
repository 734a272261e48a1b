package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"micronation/pkg/platform/sentinel"
	"micronation/pkg/requestcontext"
)

// Memory is the in-memory Store implementation. It keeps service tests fast
// and database-free and intentionally favors clarity over performance.
//
// Unique constraints are part of the collection's schema, not business logic,
// so they are declared at construction just like the indexes of the Postgres
// implementation.
type Memory[T any] struct {
	mu     sync.RWMutex
	unique []string
	// records keep insertion order so "first match" is deterministic.
	records []memRecord
}

type memRecord struct {
	id        string
	createdAt time.Time
	fields    map[string]any
}

// NewMemory creates an empty in-memory collection enforcing uniqueness on the
// given document fields.
func NewMemory[T any](uniqueFields ...string) *Memory[T] {
	return &Memory[T]{unique: uniqueFields}
}

func (m *Memory[T]) CreateAndReturn(ctx context.Context, data T) (Record[T], error) {
	fields, err := toFields(data)
	if err != nil {
		return Record[T]{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, field := range m.unique {
		if _, taken := m.findLocked(Filter{field: fields[field]}, ""); taken {
			return Record[T]{}, &ConflictError{Field: field}
		}
	}

	rec := memRecord{
		id:        uuid.NewString(),
		createdAt: requestcontext.Now(ctx),
		fields:    fields,
	}
	m.records = append(m.records, rec)
	return decode[T](rec)
}

func (m *Memory[T]) FindOne(_ context.Context, filter Filter) (Record[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.findLocked(filter, "")
	if !ok {
		return Record[T]{}, sentinel.ErrNotFound
	}
	return decode[T](m.records[idx])
}

func (m *Memory[T]) UpdateAndReturnOne(_ context.Context, filter Filter, patch Patch) (Record[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.findLocked(filter, "")
	if !ok {
		return Record[T]{}, sentinel.ErrNotFound
	}

	patched := make(map[string]any, len(m.records[idx].fields)+len(patch))
	for k, v := range m.records[idx].fields {
		patched[k] = v
	}
	for k, v := range patch {
		patched[k] = normalize(v)
	}

	for _, field := range m.unique {
		if _, exists := patch[field]; !exists {
			continue
		}
		if _, taken := m.findLocked(Filter{field: patched[field]}, m.records[idx].id); taken {
			return Record[T]{}, &ConflictError{Field: field}
		}
	}

	m.records[idx].fields = patched
	return decode[T](m.records[idx])
}

// findLocked returns the index of the first record matching the filter,
// skipping the record with the excluded ID. Callers must hold the lock.
func (m *Memory[T]) findLocked(filter Filter, excludeID string) (int, bool) {
	for i, rec := range m.records {
		if rec.id == excludeID {
			continue
		}
		if matches(rec, filter) {
			return i, true
		}
	}
	return 0, false
}

func matches(rec memRecord, filter Filter) bool {
	for key, want := range filter {
		if key == FieldID {
			if rec.id != fmt.Sprint(want) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(rec.fields[key], normalize(want)) {
			return false
		}
	}
	return true
}

// toFields converts a document to its canonical field map through a JSON
// round trip, mirroring how the Postgres implementation stores it. The input
// document is left untouched.
func toFields(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}

// normalize brings a single value into the same canonical form toFields
// produces, so filter and patch values compare correctly against stored ones.
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func decode[T any](rec memRecord) (Record[T], error) {
	raw, err := json.Marshal(rec.fields)
	if err != nil {
		return Record[T]{}, fmt.Errorf("encode record: %w", err)
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return Record[T]{}, fmt.Errorf("decode record: %w", err)
	}
	return Record[T]{ID: rec.id, CreatedAt: rec.createdAt, Data: data}, nil
}
