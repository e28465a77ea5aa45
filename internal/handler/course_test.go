package handler_test

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

var (
	selectCategoryRe = regexp.QuoteMeta("SELECT id,name FROM category WHERE name=? LIMIT 1")
	listCategoriesRe = regexp.QuoteMeta("SELECT id,name FROM category ORDER BY name")
	insertCourseRe   = regexp.QuoteMeta("INSERT INTO course (title, description, video_id, created_date, category_id, author_id) VALUES (?,?,?,?,?,?)")
	selectCourseRe   = regexp.QuoteMeta("SELECT id,title,description,video_id,created_date,category_id,author_id FROM course WHERE id=? LIMIT 1")
	listCoursesRe    = regexp.QuoteMeta("SELECT id,title,description,video_id,created_date,category_id,author_id FROM course ORDER BY id LIMIT ? OFFSET ?")
	deleteCourseRe   = regexp.QuoteMeta("DELETE FROM course WHERE id=?")
)

func courseColumns() []string {
	return []string{"id", "title", "description", "video_id", "created_date", "category_id", "author_id"}
}

func TestListCoursesRequiresSession(t *testing.T) {
	e, _ := newServer(t)

	rec := doJSON(e, http.MethodGet, "/courses", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListCoursesClampsPaging(t *testing.T) {
	e, mock := newServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(listCoursesRe).
		WithArgs(25, 0).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(1, "Go Basics", "intro", "vid-1", now, 3, 7).
			AddRow(2, "Go Advanced", "", "vid-2", now, 3, 7))

	rec := doJSON(e, http.MethodGet, "/courses?limit=100&offset=-5", "",
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleStudent))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Courses []map[string]interface{} `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Courses, 2)
	assert.Equal(t, "Go Basics", body.Courses[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourseForbiddenForStudent(t *testing.T) {
	e, mock := newServer(t)

	rec := doJSON(e, http.MethodPost, "/courses",
		`{"title":"Go Basics","video_id":"vid-1","category":"go"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleStudent))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourseUnknownCategory(t *testing.T) {
	e, mock := newServer(t)

	mock.ExpectQuery(selectCategoryRe).
		WithArgs("philosophy").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(listCategoriesRe).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(3, "go").AddRow(4, "math"))

	rec := doJSON(e, http.MethodPost, "/courses",
		`{"title":"Ethics","video_id":"vid-9","category":"philosophy"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error           string   `json:"error"`
		ValidCategories []string `json:"valid_categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid category: philosophy", body.Error)
	assert.Equal(t, []string{"go", "math"}, body.ValidCategories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourse(t *testing.T) {
	e, mock := newServer(t)

	mock.ExpectQuery(selectCategoryRe).
		WithArgs("go").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "go"))
	mock.ExpectBegin()
	mock.ExpectExec(insertCourseRe).
		WithArgs("Go Basics", "intro", "vid-1", sqlmock.AnyArg(), uint64(3), uint64(7)).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	rec := doJSON(e, http.MethodPost, "/courses",
		`{"title":"Go Basics","description":"intro","video_id":"vid-1","category":"go"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Courses map[string]interface{} `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(11), body.Courses["id"])
	assert.Equal(t, float64(3), body.Courses["category_id"])
	assert.Equal(t, float64(7), body.Courses["author_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCourseByAuthor(t *testing.T) {
	e, mock := newServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(5, "Old Title", "intro", "vid-1", now, 3, 7))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course SET title=? WHERE id=?")).
		WithArgs("New Title", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(5, "New Title", "intro", "vid-1", now, 3, 7))

	rec := doJSON(e, http.MethodPatch, "/courses/5",
		`{"title":"New Title"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New Title")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCourseNonOwningTeacher(t *testing.T) {
	e, mock := newServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(5, "Old Title", "intro", "vid-1", now, 3, 99))

	rec := doJSON(e, http.MethodPatch, "/courses/5",
		`{"title":"Hijacked"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCourseInvalidID(t *testing.T) {
	e, _ := newServer(t)

	rec := doJSON(e, http.MethodPatch, "/courses/abc", `{"title":"x"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCourseMissing(t *testing.T) {
	e, mock := newServer(t)

	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows(courseColumns()))

	rec := doJSON(e, http.MethodPatch, "/courses/404", `{"title":"x"}`,
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseByAuthor(t *testing.T) {
	e, mock := newServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(5, "Go Basics", "intro", "vid-1", now, 3, 7))
	mock.ExpectExec(deleteCourseRe).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(e, http.MethodDelete, "/courses/5", "",
		sessionFor(t, 7, "ada@example.com", "Ada", model.RoleTeacher))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCourseAdminBypassesOwnership(t *testing.T) {
	e, mock := newServer(t)

	now := time.Now().UTC()
	mock.ExpectQuery(selectCourseRe).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(courseColumns()).
			AddRow(5, "Go Basics", "intro", "vid-1", now, 3, 99))
	mock.ExpectExec(deleteCourseRe).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(e, http.MethodDelete, "/courses/5", "",
		sessionFor(t, 1, "admin@example.com", "Root", model.RoleAdmin))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
