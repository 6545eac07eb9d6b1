// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Each student is one row in the students table. IDs are UUID strings
// generated here rather than autoincrement integers, so ids look the same
// to clients regardless of backend: opaque strings. Timestamps are stored
// as Unix milliseconds.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/config"
	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/google/uuid"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

const columns = "id, name, gender, age, created_at, updated_at"

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB

	now func() time.Time
}

// New opens the SQLite database at cfg.Path, creates the students table
// if it does not already exist, and returns a ready-to-use *SQLite.
func New(ctx context.Context, cfg config.SQLite) (*SQLite, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", errors.Join(storage.ErrUnavailable, err))
	}

	// SQLite allows one writer at a time; a single connection turns
	// "database is locked" errors into queueing.
	db.SetMaxOpenConns(1)

	// CREATE TABLE IF NOT EXISTS is idempotent, so it runs on every
	// startup.
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id         TEXT    PRIMARY KEY,
			name       TEXT    NOT NULL,
			gender     TEXT    NOT NULL,
			age        TEXT    NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", errors.Join(storage.ErrUnavailable, err))
	}

	return &SQLite{
		Db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var (
		student          types.Student
		created, updated int64
	)
	if err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Gender,
		&student.Age,
		&created,
		&updated,
	); err != nil {
		return types.Student{}, err
	}
	student.CreatedAt = time.UnixMilli(created).UTC()
	student.UpdatedAt = time.UnixMilli(updated).UTC()
	return student, nil
}

// CreateStudent inserts a new row into the students table.
// Placeholders (?) keep user input out of the SQL text.
func (s *SQLite) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	now := s.now()
	student := types.Student{
		ID:        uuid.NewString(),
		Name:      in.Name.String(),
		Gender:    in.Gender.String(),
		Age:       in.Age.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students ("+columns+") VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		student.ID, student.Name, student.Gender, student.Age,
		now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return student, nil
}

// GetStudentByID fetches exactly one row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all rows in insertion order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM students ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

func nullText(t *types.Text) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

// UpdateStudentByID overwrites only the columns set in patch. A NULL
// parameter makes COALESCE keep the current value. updated_at always moves
// forward by at least one millisecond.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx, `
		UPDATE students
		SET name       = COALESCE(?, name),
		    gender     = COALESCE(?, gender),
		    age        = COALESCE(?, age),
		    updated_at = MAX(?, updated_at + 1)
		WHERE id = ?
	`)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx,
		nullText(patch.Name), nullText(patch.Gender), nullText(patch.Age),
		s.now().UnixMilli(), id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, storage.ErrNotFound
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a row by primary key and returns it as it was.
// The read and the delete share a transaction.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	student, err := scanStudent(tx.QueryRowContext(ctx,
		"SELECT "+columns+" FROM students WHERE id = ? LIMIT 1", id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("DeleteStudentByID: scan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: commit: %w", err)
	}

	return student, nil
}

// Ping checks that the database file is still usable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *SQLite) Close(_ context.Context) error {
	return s.Db.Close()
}
