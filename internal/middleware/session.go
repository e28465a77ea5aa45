package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dorjizangpo/e-learning-platform/internal/auth"
	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

// CookieName is the session cookie carrying the signed access token.
const CookieName = "access_token"

// Context keys under which ResolveSession stores the decoded claims.
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxUserRole  = "user_role"
	CtxUserName  = "user_name"
)

// ResolveSession reads the access_token cookie and, when it decodes to
// valid claims, attaches them to the request context. Absence of a cookie
// or an invalid/expired token is a normal silent outcome: the request
// continues anonymously and route policy decides whether that is allowed.
func ResolveSession(secret string, algs []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			cl, err := auth.VerifyAccessToken(ck.Value, secret, algs)
			if err != nil {
				return next(c)
			}
			c.Set(CtxUserID, cl.UserID)
			c.Set(CtxUserEmail, cl.Subject)
			c.Set(CtxUserRole, cl.Role)
			c.Set(CtxUserName, cl.Name)
			return next(c)
		}
	}
}

// RequireSession rejects requests that did not resolve to a valid session.
// Missing, invalid and expired tokens are indistinguishable to the client.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(CtxUserID).(string); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			return next(c)
		}
	}
}

// SessionRole returns the authenticated role stored in the context, or
// false when the request is anonymous.
func SessionRole(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(CtxUserRole).(model.Role)
	return r, ok
}

// SessionUserID returns the authenticated user id (canonical string form),
// or false when the request is anonymous.
func SessionUserID(c echo.Context) (string, bool) {
	s, ok := c.Get(CtxUserID).(string)
	return s, ok && s != ""
}
