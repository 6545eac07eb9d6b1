package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/storage/storagetest"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestMemoryConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateStudent(ctx, types.StudentInput{Name: "n", Gender: "g", Age: "1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	students, err := m.GetStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 50)
}

func TestMemoryListOrder(t *testing.T) {
	ctx := context.Background()
	m := New()

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		_, err := m.CreateStudent(ctx, types.StudentInput{Name: types.Text(name), Gender: "g", Age: "1"})
		require.NoError(t, err)
	}

	students, err := m.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, len(names))
	for i, name := range names {
		assert.Equal(t, name, students[i].Name)
	}
}

func TestMemoryUpdatedAtAdvancesWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	m := New()
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return frozen }

	created, err := m.CreateStudent(ctx, types.StudentInput{Name: "n", Gender: "g", Age: "1"})
	require.NoError(t, err)

	age := types.Text("2")
	first, err := m.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Age: &age})
	require.NoError(t, err)
	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, first.CreatedAt.Equal(frozen))

	second, err := m.UpdateStudentByID(ctx, created.ID, types.StudentPatch{})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestNextUpdatedAt(t *testing.T) {
	prev := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, prev.Add(time.Millisecond), nextUpdatedAt(prev, prev))
	assert.Equal(t, prev.Add(time.Millisecond), nextUpdatedAt(prev.Add(-time.Second), prev))
	assert.Equal(t, prev.Add(time.Second), nextUpdatedAt(prev.Add(time.Second), prev))
}
