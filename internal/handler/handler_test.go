package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dorjizangpo/e-learning-platform/internal/auth"
	"github.com/dorjizangpo/e-learning-platform/internal/config"
	"github.com/dorjizangpo/e-learning-platform/internal/handler"
	"github.com/dorjizangpo/e-learning-platform/internal/middleware"
	"github.com/dorjizangpo/e-learning-platform/internal/model"
	"github.com/dorjizangpo/e-learning-platform/internal/repository"
	"github.com/dorjizangpo/e-learning-platform/internal/router"
	"github.com/dorjizangpo/e-learning-platform/internal/validation"
)

const (
	testSecret = "handler-test-secret"
	testAlg    = "HS256"
)

// newServer wires the full route table onto a mock-backed stack so tests
// exercise the same middleware chain as production. The rate limiter is
// disabled and the event publisher is nil (a no-op).
func newServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:  testSecret,
		JWTAlg:     testAlg,
		AccessTTL:  15 * time.Minute,
		AdminEmail: "admin@example.com",
		BcryptCost: bcrypt.MinCost,
	}
	users := repository.NewUserRepo(db)
	courses := repository.NewCourseRepo(db)
	categories := repository.NewCategoryRepo(db)

	e := echo.New()
	e.Validator = validation.New()
	router.Register(e, router.Deps{
		Cfg:        cfg,
		RateCfg:    config.RateLimitConfig{Enabled: false},
		Auth:       handler.NewAuthHandler(cfg, users, nil),
		Courses:    handler.NewCourseHandler(courses, categories, nil),
		Categories: handler.NewCategoryHandler(categories),
	})
	return e, mock
}

// sessionFor issues a real access token for the given identity and wraps
// it in the session cookie the resolver reads.
func sessionFor(t *testing.T, id uint64, email, name string, role model.Role) *http.Cookie {
	t.Helper()
	tok, err := auth.IssueAccessToken(testSecret, testAlg, auth.Claims{
		Subject: email,
		Role:    role,
		UserID:  strconv.FormatUint(id, 10),
		Name:    name,
	}, time.Minute)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.CookieName, Value: tok.Token}
}

func doJSON(e *echo.Echo, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
