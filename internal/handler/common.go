package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dorjizangpo/e-learning-platform/internal/middleware"
	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

// currentUserID returns the authenticated caller's numeric id. The claims
// carry it as a string; parse once here so every handler compares in one
// representation.
func currentUserID(c echo.Context) (uint64, bool) {
	s, ok := middleware.SessionUserID(c)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func currentRole(c echo.Context) (model.Role, bool) {
	return middleware.SessionRole(c)
}
