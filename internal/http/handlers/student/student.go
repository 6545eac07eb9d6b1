// Package student contains all HTTP handlers related to the Student resource.
//
// Each exported function is a factory: it receives the storage dependency
// once at route registration and returns the http.HandlerFunc that runs on
// every request.
//
//	router.HandleFunc("POST /studentDetails", student.New(store))
//
// Successful responses are wrapped as {"data": ...}. Lookups by id that do
// not resolve (unknown or malformed id) answer 200 with {"data": null};
// deletes always answer 204 with no body.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/aanand-mishra/studentdb-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errTrailingData = errors.New("request body must contain a single JSON object")
)

// validate reports field errors by their JSON names ("name", not "Name").
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// Anything after the first JSON value other than whitespace is rejected.
// On failure it writes the 400 response itself and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errEmptyBody))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errTrailingData))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return false
	}

	return true
}

func storeError(w http.ResponseWriter, msg, id string, err error) {
	slog.Error(msg, slog.String("id", id), slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}

// New handles POST /studentDetails
// Creates a new student from the JSON request body.
//
// Request body:
//
//	{ "name": "Vivek Ranjan", "gender": "Male", "age": "24" }
//
// Success response (201 Created):
//
//	{ "data": { "id": "...", "name": "Vivek Ranjan", "gender": "Male", "age": "24",
//	            "createdAt": "...", "updatedAt": "..." } }
//
// 400 for an empty or malformed body or a missing field, 500 for store errors.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var in types.StudentInput
		if !decodeAndValidate(w, r, &in) {
			return
		}

		student, err := store.CreateStudent(r.Context(), in)
		if err != nil {
			storeError(w, "error creating student", "", err)
			return
		}

		slog.Info("student created", slog.String("id", student.ID))
		response.WriteData(w, http.StatusCreated, student)
	}
}

// GetList handles GET /studentDetails
// Returns every student. The data array is empty, never null, when there
// are none.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			storeError(w, "error getting students", "", err)
			return
		}
		if students == nil {
			students = []types.Student{}
		}

		response.WriteData(w, http.StatusOK, students)
	}
}

// GetByID handles GET /studentDetails/{id}
//
//	200 { "data": { ...student } }
//	200 { "data": null }            (no student with that id)
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteData(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			storeError(w, "error getting student", id, err)
			return
		}

		response.WriteData(w, http.StatusOK, student)
	}
}

// Update handles PATCH /studentDetails/{id}
// Overwrites only the fields present in the body; the rest keep their
// stored values.
//
//	PATCH /studentDetails/65f0...  { "age": "25" }
//	200 { "data": { ...student with age "25" } }
//	200 { "data": null }            (no student with that id)
//
// A supplied field must not be empty (400).
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		var patch types.StudentPatch
		if !decodeAndValidate(w, r, &patch) {
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, patch)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteData(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			storeError(w, "error updating student", id, err)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteData(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /studentDetails/{id}
// Answers 204 whether or not the student existed.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		_, err := store.DeleteStudentByID(r.Context(), id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			storeError(w, "error deleting student", id, err)
			return
		}

		if err == nil {
			slog.Info("student deleted", slog.String("id", id))
		}
		response.NoContent(w)
	}
}
