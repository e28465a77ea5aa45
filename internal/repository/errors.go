// Package repository implements data access over database/sql. Sentinel
// errors let handlers map persistence failures onto the HTTP error
// taxonomy without inspecting driver internals.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration collides with an existing
// email. The in-flight transaction is rolled back before this surfaces.
var ErrEmailExists = errors.New("email already exists")

// ErrCategoryInUse is returned when a category cannot be deleted because
// courses still reference it. Handlers translate it into HTTP 409.
var ErrCategoryInUse = errors.New("category still referenced by courses")
