package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetUsers is a placeholder listing endpoint. It is public but sits behind
// the rate limiter, which keys on user id or client IP.
func GetUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "List of users"})
}
