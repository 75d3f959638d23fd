// Package router wires handlers, auth filters and route groups onto the
// Echo instance.  Three audiences, three groups: /v1/auth and /v1 for
// the UI, /v1/admin for administrators, /api/v1 for bearer-token
// scripts.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/aionify/aionify/internal/config"
	"github.com/aionify/aionify/internal/handler"
	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg       config.Config
	RateCfg   config.RateLimitConfig
	CacheCfg  config.CacheConfig
	Redis     *redis.Client
	Users     *repository.UserRepo
	APITokens *repository.APITokenRepo
	Remember  *service.RememberMeService
	Limiter   *service.FailedAttemptLimiter

	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Entries  *handler.EntryHandler
	Admin    *handler.AdminHandler
	Settings *handler.SettingsHandler
	API      *handler.PublicAPIHandler
}

// Register mounts all routes on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// unauthenticated session endpoints; login carries the Redis bucket
	auth := e.Group("/v1/auth")
	auth.POST("/login", d.Auth.Login, middleware.LoginRateLimit(d.RateCfg, d.Redis))
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/activate", d.Auth.Activate)

	// UI endpoints behind JWT / remember-me session auth
	session := middleware.SessionAuth(d.Cfg.JWTSecret, d.Remember, d.Users)
	cache := middleware.ResponseCache(d.CacheCfg, d.Redis)

	v1 := e.Group("/v1", session)
	v1.GET("/me", d.Profile.Me)
	v1.POST("/me/password", d.Profile.ChangePassword)
	v1.PATCH("/me", d.Profile.UpdateProfile)

	v1.GET("/entries", d.Entries.List, cache)
	v1.GET("/entries/active", d.Entries.Active)
	v1.POST("/entries/start", d.Entries.Start)
	v1.POST("/entries/stop", d.Entries.Stop)
	v1.PATCH("/entries/:id", d.Entries.Update)
	v1.DELETE("/entries/:id", d.Entries.Delete)

	v1.GET("/me/api-token", d.Settings.GetAPIToken)
	v1.POST("/me/api-token", d.Settings.CreateAPIToken)
	v1.DELETE("/me/api-token", d.Settings.DeleteAPIToken)

	admin := e.Group("/v1/admin", session, middleware.RequireAdmin())
	admin.GET("/users", d.Admin.ListUsers)
	admin.POST("/users", d.Admin.CreateUser)
	admin.DELETE("/users/:id", d.Admin.DeleteUser)
	admin.POST("/users/:id/activation-token", d.Admin.RegenerateActivation)

	// public API behind API-token auth with the brute-force limiter
	api := e.Group("/api/v1", middleware.APITokenAuth(d.Limiter, d.APITokens))
	api.POST("/start", d.API.Start)
	api.POST("/stop", d.API.Stop)
	api.GET("/active", d.API.Active)
	api.GET("/", d.API.List)
	api.GET("", d.API.List)
}
