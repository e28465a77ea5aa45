package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dorjizangpo/e-learning-platform/internal/model"
	"github.com/dorjizangpo/e-learning-platform/internal/queue"
	"github.com/dorjizangpo/e-learning-platform/internal/repository"
	queue_publisher "github.com/dorjizangpo/e-learning-platform/internal/service"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 25
)

// CourseHandler bundles dependencies for the course endpoints. The role
// gate (teacher-or-admin) runs in middleware; the ownership refinement
// lives here because it needs the fetched resource.
type CourseHandler struct {
	Courses    *repository.CourseRepo
	Categories *repository.CategoryRepo
	Events     *queue_publisher.Publisher
}

func NewCourseHandler(courses *repository.CourseRepo, categories *repository.CategoryRepo, events *queue_publisher.Publisher) *CourseHandler {
	return &CourseHandler{Courses: courses, Categories: categories, Events: events}
}

// ----- DTOs -----

type createCourseReq struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description"`
	VideoID     string `json:"video_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

type updateCourseReq struct {
	Title       *string `json:"title" validate:"omitempty,max=120"`
	Description *string `json:"description"`
	VideoID     *string `json:"video_id"`
	Category    *string `json:"category"`
}

type courseResp struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoID     string    `json:"video_id"`
	CreatedDate time.Time `json:"created_date"`
	CategoryID  uint64    `json:"category_id"`
	AuthorID    uint64    `json:"author_id"`
}

func toCourseResp(c model.Course) courseResp {
	return courseResp{
		ID: c.ID, Title: c.Title, Description: c.Description, VideoID: c.VideoID,
		CreatedDate: c.CreatedDate, CategoryID: c.CategoryID, AuthorID: c.AuthorID,
	}
}

// List returns a page of courses. limit is clamped to [1,25] with a
// default of 10; a negative offset is treated as 0.
func (h *CourseHandler) List(c echo.Context) error {
	limit := defaultPageLimit
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := 0
	if s := c.QueryParam("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			offset = n
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Courses.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]courseResp, 0, len(items))
	for _, course := range items {
		out = append(out, toCourseResp(course))
	}
	return c.JSON(http.StatusOK, echo.Map{"courses": out})
}

// Create resolves the category by name and inserts the course with the
// caller as author. An unknown category name yields 404 along with the
// set of valid names so the client can correct itself.
func (h *CourseHandler) Create(c echo.Context) error {
	authorID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req createCourseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByName(ctx, req.Category)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.unknownCategory(c, ctx, req.Category)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		VideoID:     req.VideoID,
		CategoryID:  cat.ID,
		AuthorID:    authorID,
	}
	if err := h.Courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.unknownCategory(c, ctx, req.Category)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create course failed"})
	}

	_ = h.Events.PublishCourseCreated(ctx, queue.CourseCreatedEvent{
		EventID:      uuid.NewString(),
		CourseID:     course.ID,
		Title:        course.Title,
		CategoryName: cat.Name,
		AuthorID:     course.AuthorID,
		CreatedAt:    course.CreatedDate.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"courses": toCourseResp(*course)})
}

// Update applies a partial update to a course the caller may modify.
func (h *CourseHandler) Update(c echo.Context) error {
	course, ctx, cancel, ok := h.loadOwnedCourse(c)
	if !ok {
		return nil // response already written
	}
	defer cancel()

	var req updateCourseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	upd := repository.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		VideoID:     req.VideoID,
	}
	if req.Category != nil {
		cat, err := h.Categories.GetByName(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return h.unknownCategory(c, ctx, *req.Category)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		upd.CategoryID = &cat.ID
	}

	if err := h.Courses.Update(ctx, course.ID, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Courses.GetByID(ctx, course.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"courses": toCourseResp(updated)})
}

// Delete removes a course the caller may modify.
func (h *CourseHandler) Delete(c echo.Context) error {
	course, ctx, cancel, ok := h.loadOwnedCourse(c)
	if !ok {
		return nil
	}
	defer cancel()

	if err := h.Courses.Delete(ctx, course.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// loadOwnedCourse parses the :id param, fetches the course and enforces
// the ownership rule: the author may modify their course, and an admin
// may modify any course. A non-owning teacher is rejected regardless of
// the role gate having passed. When ok is false the HTTP response has
// already been written and the handler should return nil.
func (h *CourseHandler) loadOwnedCourse(c echo.Context) (model.Course, context.Context, context.CancelFunc, bool) {
	nop := func() {}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return model.Course{}, nil, nop, false
	}
	callerID, ok := currentUserID(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		return model.Course{}, nil, nop, false
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)

	course, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		cancel()
		if errors.Is(err, repository.ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "course not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return model.Course{}, nil, nop, false
	}

	role, _ := currentRole(c)
	if role != model.RoleAdmin && course.AuthorID != callerID {
		cancel()
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.Course{}, nil, nop, false
	}
	return course, ctx, cancel, true
}

// unknownCategory writes the 404 for a category name that does not exist,
// attaching the valid names as a remediation hint.
func (h *CourseHandler) unknownCategory(c echo.Context, ctx context.Context, name string) error {
	names, err := h.Categories.ListNames(ctx)
	if err != nil {
		names = nil
	}
	return c.JSON(http.StatusNotFound, echo.Map{
		"error":            "invalid category: " + name,
		"valid_categories": names,
	})
}
