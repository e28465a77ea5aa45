package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

type CourseRepo struct{ DB *sql.DB }

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{DB: db} }

// CourseUpdate carries a partial update. Nil fields are left untouched.
type CourseUpdate struct {
	Title       *string
	Description *string
	VideoID     *string
	CategoryID  *uint64
}

// Create inserts a course inside its own transaction. The caller resolves
// the category beforehand; a foreign key failure still maps to ErrNotFound
// in case the category or author vanished between resolution and insert.
func (r *CourseRepo) Create(ctx context.Context, course *model.Course) error {
	if course.CreatedDate.IsZero() {
		course.CreatedDate = time.Now().UTC()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO course (title, description, video_id, created_date, category_id, author_id) VALUES (?,?,?,?,?,?)",
		course.Title, course.Description, course.VideoID, course.CreatedDate,
		course.CategoryID, course.AuthorID)
	if err != nil {
		_ = tx.Rollback()
		if isMissingReference(err) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	course.ID = uint64(id)
	return nil
}

// GetByID fetches a course by id.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (model.Course, error) {
	var course model.Course
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,description,video_id,created_date,category_id,author_id FROM course WHERE id=? LIMIT 1",
		id).Scan(&course.ID, &course.Title, &course.Description, &course.VideoID,
		&course.CreatedDate, &course.CategoryID, &course.AuthorID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Course{}, ErrNotFound
	}
	return course, err
}

// List returns a page of courses ordered by id. Clamping of limit/offset
// is handler policy; the repository trusts its arguments.
func (r *CourseRepo) List(ctx context.Context, limit, offset int) ([]model.Course, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,description,video_id,created_date,category_id,author_id FROM course ORDER BY id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.VideoID,
			&course.CreatedDate, &course.CategoryID, &course.AuthorID); err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields of upd to the course. ErrNotFound when
// the course does not exist; a no-op update on an existing row succeeds.
func (r *CourseRepo) Update(ctx context.Context, id uint64, upd CourseUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if upd.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.VideoID != nil {
		sets = append(sets, "video_id=?")
		args = append(args, *upd.VideoID)
	}
	if upd.CategoryID != nil {
		sets = append(sets, "category_id=?")
		args = append(args, *upd.CategoryID)
	}
	if len(sets) == 0 {
		// Nothing to change; still report missing rows.
		_, err := r.GetByID(ctx, id)
		return err
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE course SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isMissingReference(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// Delete removes a course by id.
func (r *CourseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM course WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isMissingReference detects MySQL error 1452 (foreign key constraint
// fails on insert/update).
func isMissingReference(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
