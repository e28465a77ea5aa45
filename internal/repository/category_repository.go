package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category and returns it with its assigned id.
func (r *CategoryRepo) Create(ctx context.Context, name string) (model.Category, error) {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO category (name) VALUES (?)", name)
	if err != nil {
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return model.Category{ID: uint64(id), Name: name}, nil
}

// GetByName resolves a category by its exact name. The create-course API
// references categories by name, so a miss here is a client-visible 404.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (model.Category, error) {
	var cat model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM category WHERE name=? LIMIT 1", name).
		Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return cat, err
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name FROM category ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// ListNames returns the names of all categories. Used to attach the set of
// valid names to the unknown-category error response.
func (r *CategoryRepo) ListNames(ctx context.Context) ([]string, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cats))
	for _, cat := range cats {
		names = append(names, cat.Name)
	}
	return names, nil
}

// Delete removes a category by id. Missing rows map to ErrNotFound; a
// foreign key violation (courses still reference it) to ErrCategoryInUse.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM category WHERE id=?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
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

// isForeignKeyViolation detects MySQL error 1451 (row referenced by a
// foreign key).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1451")
}
