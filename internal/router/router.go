// Package router wires handlers, the session resolver, the role gates and
// the rate limiter onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dorjizangpo/e-learning-platform/internal/config"
	"github.com/dorjizangpo/e-learning-platform/internal/handler"
	"github.com/dorjizangpo/e-learning-platform/internal/middleware"
	"github.com/dorjizangpo/e-learning-platform/internal/model"
)

// Deps carries everything route registration needs. RDB may be nil, in
// which case the rate limiter passes requests through.
type Deps struct {
	Cfg        config.Config
	RateCfg    config.RateLimitConfig
	RDB        *redis.Client
	Auth       *handler.AuthHandler
	Courses    *handler.CourseHandler
	Categories *handler.CategoryHandler
}

// Register attaches all routes. The session resolver runs on every request
// so that public routes stay anonymous-friendly while the rate limiter can
// still key on the user id when one is present; per-route policy is then
// enforced by RequireSession/RequireRole.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.ResolveSession(d.Cfg.JWTSecret, d.Cfg.Algorithms()))
	limiter := middleware.NewTokenBucket(d.RateCfg, d.RDB)

	authG := e.Group("/auth", limiter)
	authG.POST("/register", d.Auth.Register)
	authG.POST("/login", d.Auth.Login)
	authG.POST("/logout", d.Auth.Logout, middleware.RequireSession())

	teacherOrAdmin := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	courses := e.Group("/courses", middleware.RequireSession())
	courses.GET("", d.Courses.List)
	courses.GET("/", d.Courses.List)
	courses.POST("", d.Courses.Create, teacherOrAdmin)
	courses.POST("/", d.Courses.Create, teacherOrAdmin)
	courses.PATCH("/:id", d.Courses.Update, teacherOrAdmin)
	courses.DELETE("/:id", d.Courses.Delete, teacherOrAdmin)

	adminOnly := []echo.MiddlewareFunc{middleware.RequireSession(), middleware.RequireRole(model.RoleAdmin)}
	categories := e.Group("/categories")
	categories.GET("", d.Categories.List)
	categories.GET("/", d.Categories.List)
	categories.POST("", d.Categories.Create, adminOnly...)
	categories.POST("/", d.Categories.Create, adminOnly...)
	categories.DELETE("/:id", d.Categories.Delete, adminOnly...)

	e.GET("/users", handler.GetUsers, limiter)
	e.GET("/users/", handler.GetUsers, limiter)
}
