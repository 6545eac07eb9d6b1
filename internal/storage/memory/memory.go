// Package memory provides a process-local implementation of
// storage.Storage. Records live in a map guarded by a RWMutex and vanish
// when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/google/uuid"
)

// entry pairs a record with its insertion sequence number.
type entry struct {
	seq     uint64
	student types.Student
}

// Memory is an in-memory storage.Storage.
type Memory struct {
	mu       sync.RWMutex
	students map[string]entry
	seq      uint64

	now func() time.Time
}

// New returns an empty store.
func New() *Memory {
	return &Memory{
		students: map[string]entry{},
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// CreateStudent stores a new record under a fresh UUID.
func (m *Memory) CreateStudent(_ context.Context, in types.StudentInput) (types.Student, error) {
	now := m.now()
	student := types.Student{
		ID:        uuid.NewString(),
		Name:      in.Name.String(),
		Gender:    in.Gender.String(),
		Age:       in.Age.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.students[student.ID] = entry{seq: m.seq, student: student}

	return student, nil
}

// GetStudents returns records in insertion order, oldest first.
func (m *Memory) GetStudents(_ context.Context) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]entry, 0, len(m.students))
	for _, e := range m.students {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	students := make([]types.Student, 0, len(entries))
	for _, e := range entries {
		students = append(students, e.student)
	}
	return students, nil
}

// GetStudentByID looks up one record, or returns storage.ErrNotFound.
func (m *Memory) GetStudentByID(_ context.Context, id string) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return e.student, nil
}

// UpdateStudentByID applies patch and moves UpdatedAt strictly forward,
// even when the clock has not advanced past the previous write.
func (m *Memory) UpdateStudentByID(_ context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}

	patch.Apply(&e.student)
	e.student.UpdatedAt = nextUpdatedAt(m.now(), e.student.UpdatedAt)
	m.students[id] = e

	return e.student, nil
}

// nextUpdatedAt returns now, or prev plus one millisecond if now would not
// move past prev.
func nextUpdatedAt(now, prev time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

// DeleteStudentByID removes a record and returns it as it was.
func (m *Memory) DeleteStudentByID(_ context.Context, id string) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	delete(m.students, id)

	return e.student, nil
}

// Ping always succeeds.
func (m *Memory) Ping(_ context.Context) error { return nil }

// Close is a no-op; the map is garbage collected with the store.
func (m *Memory) Close(_ context.Context) error { return nil }
