// Package storagetest holds the behavioural contract every storage.Storage
// backend must satisfy. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store and registers its own cleanup.
type Factory func(t *testing.T) storage.Storage

// UnknownID is well-formed for every backend but never assigned.
const UnknownID = "65f0c0ffee0000000000beef"

func text(s string) *types.Text {
	v := types.Text(s)
	return &v
}

func vivek() types.StudentInput {
	return types.StudentInput{Name: "Vivek Ranjan", Gender: "Male", Age: "24"}
}

// Run exercises create, list, get, update and delete against the store
// produced by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Vivek Ranjan", created.Name)
		assert.Equal(t, "Male", created.Gender)
		assert.Equal(t, "24", created.Age)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	})

	t.Run("CreatedIDsAreUnique", func(t *testing.T) {
		s := newStore(t)

		a, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)
		b, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("ListContainsEachRecordOnce", func(t *testing.T) {
		s := newStore(t)

		inputs := []types.StudentInput{
			vivek(),
			{Name: "Asha", Gender: "Female", Age: "21"},
			{Name: "Ravi", Gender: "Male", Age: "19"},
		}
		created := map[string]types.Student{}
		for _, in := range inputs {
			student, err := s.CreateStudent(ctx, in)
			require.NoError(t, err)
			created[student.ID] = student
		}

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		require.Len(t, students, len(inputs))

		seen := map[string]int{}
		for _, got := range students {
			seen[got.ID]++
			want, ok := created[got.ID]
			require.True(t, ok, "unexpected id %s", got.ID)
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Gender, got.Gender)
			assert.Equal(t, want.Age, got.Age)
			assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "id %s listed %d times", id, n)
		}
	})

	t.Run("GetReturnsLastWrite", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		got, err := s.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Name, got.Name)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

		_, err = s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Name: text("Vivek R.")})
		require.NoError(t, err)

		got, err = s.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Vivek R.", got.Name)
	})

	t.Run("GetUnknownAndMalformed", func(t *testing.T) {
		s := newStore(t)

		for _, id := range []string{UnknownID, "not-an-id", ""} {
			_, err := s.GetStudentByID(ctx, id)
			assert.ErrorIs(t, err, storage.ErrNotFound, "id %q", id)
		}
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		updated, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Age: text("25")})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "25", updated.Age)
		assert.Equal(t, "Vivek Ranjan", updated.Name)
		assert.Equal(t, "Male", updated.Gender)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("RepeatedUpdatesAdvanceUpdatedAt", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		last := created.UpdatedAt
		for i := 0; i < 20; i++ {
			updated, err := s.UpdateStudentByID(ctx, created.ID, types.StudentPatch{Age: text("25")})
			require.NoError(t, err)
			require.True(t, updated.UpdatedAt.After(last), "update %d did not advance updatedAt", i)
			last = updated.UpdatedAt
		}
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		s := newStore(t)

		names := []string{"a", "b", "c", "d", "e"}
		for _, name := range names {
			_, err := s.CreateStudent(ctx, types.StudentInput{Name: types.Text(name), Gender: "g", Age: "1"})
			require.NoError(t, err)
		}

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		require.Len(t, students, len(names))
		for i, name := range names {
			assert.Equal(t, name, students[i].Name)
		}
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		s := newStore(t)

		_, err := s.UpdateStudentByID(ctx, UnknownID, types.StudentPatch{Age: text("25")})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.UpdateStudentByID(ctx, "not-an-id", types.StudentPatch{Age: text("25")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteRemovesRecord", func(t *testing.T) {
		s := newStore(t)

		created, err := s.CreateStudent(ctx, vivek())
		require.NoError(t, err)

		deleted, err := s.DeleteStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)
		assert.Equal(t, created.Name, deleted.Name)

		_, err = s.GetStudentByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = s.DeleteStudentByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		students, err := s.GetStudents(ctx)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
