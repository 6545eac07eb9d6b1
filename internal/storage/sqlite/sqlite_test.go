package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/config"
	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/storage/storagetest"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := New(context.Background(), config.SQLite{
		Path: filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	return s
}

func TestSQLiteContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		s := newTestStore(t)
		t.Cleanup(func() { assert.NoError(t, s.Close(context.Background())) })
		return s
	})
}

func TestSQLiteCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "students.db")

	s, err := New(context.Background(), config.SQLite{Path: path})
	require.NoError(t, err)
	defer s.Close(context.Background())

	assert.FileExists(t, path)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "students.db")

	s, err := New(ctx, config.SQLite{Path: path})
	require.NoError(t, err)
	created, err := s.CreateStudent(ctx, types.StudentInput{Name: "Vivek Ranjan", Gender: "Male", Age: "24"})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	s, err = New(ctx, config.SQLite{Path: path})
	require.NoError(t, err)
	defer s.Close(ctx)

	got, err := s.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Age, got.Age)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteListOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	defer s.Close(ctx)

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.CreateStudent(ctx, types.StudentInput{Name: types.Text(name), Gender: "g", Age: "1"})
		require.NoError(t, err)
	}

	students, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "a", students[0].Name)
	assert.Equal(t, "b", students[1].Name)
	assert.Equal(t, "c", students[2].Name)
}

func TestSQLiteUpdatedAtAdvancesWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	defer s.Close(ctx)

	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }

	created, err := s.CreateStudent(ctx, types.StudentInput{Name: "n", Gender: "g", Age: "1"})
	require.NoError(t, err)

	age := types.Text("2")
	first, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Age: &age})
	require.NoError(t, err)
	assert.True(t, frozen.Add(time.Millisecond).Equal(first.UpdatedAt))
	assert.True(t, first.CreatedAt.Equal(frozen))

	second, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}
