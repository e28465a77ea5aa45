package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dorjizangpo/e-learning-platform/internal/auth"
	"github.com/dorjizangpo/e-learning-platform/internal/config"
	"github.com/dorjizangpo/e-learning-platform/internal/middleware"
	"github.com/dorjizangpo/e-learning-platform/internal/model"
	"github.com/dorjizangpo/e-learning-platform/internal/queue"
	"github.com/dorjizangpo/e-learning-platform/internal/repository"
	queue_publisher "github.com/dorjizangpo/e-learning-platform/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Events *queue_publisher.Publisher
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, events *queue_publisher.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Events: events}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required,max=120"`
	Bio      string `json:"bio" validate:"max=160"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Bio   string `json:"bio,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Register creates an account. Only the configured admin email may register
// with the admin role; everyone else defaults to (or may pick) student or
// teacher. A duplicate email is rejected as a bad request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role := model.RoleStudent
	if req.Role != "" {
		role, _ = model.ParseRole(req.Role) // oneof tag already vetted it
	}
	if role == model.RoleAdmin && req.Email != strings.ToLower(h.Cfg.AdminEmail) {
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "you are not authorized to create an admin account",
		})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := &model.User{Name: req.Name, Bio: req.Bio, Email: req.Email, Role: role, HashedPassword: hash}
	if _, err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Best effort; a broker outage must not fail registration.
	_ = h.Events.PublishUserRegistered(ctx, queue.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, userResp{
		ID: u.ID, Name: u.Name, Bio: u.Bio, Email: u.Email, Role: string(u.Role),
	})
}

// Login verifies credentials and sets the access_token session cookie.
// Unknown email and wrong password are indistinguishable to the client.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.VerifyPassword(u.HashedPassword, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	tok, err := auth.IssueAccessToken(h.Cfg.JWTSecret, h.Cfg.JWTAlg, auth.Claims{
		Subject: u.Email,
		Role:    u.Role,
		UserID:  strconv.FormatUint(u.ID, 10),
		Name:    u.Name,
	}, h.Cfg.AccessTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	c.SetCookie(sessionCookie(tok.Token, int(h.Cfg.AccessTTL.Seconds())))
	return c.JSON(http.StatusOK, echo.Map{"message": "successfully logged in"})
}

// Logout clears the session cookie. The route is gated by RequireSession,
// so the claims are always present here.
func (h *AuthHandler) Logout(c echo.Context) error {
	name, _ := c.Get(middleware.CtxUserName).(string)
	c.SetCookie(sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "goodbye " + name + ", successfully logged out",
	})
}

// sessionCookie builds the access_token cookie. maxAge < 0 deletes it.
// TODO: set Secure once TLS terminates at the app instead of the proxy.
func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
