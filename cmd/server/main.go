package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/aionify/aionify/internal/config"
	"github.com/aionify/aionify/internal/database"
	"github.com/aionify/aionify/internal/handler"
	"github.com/aionify/aionify/internal/queue"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/router"
	"github.com/aionify/aionify/internal/service"
	"github.com/aionify/aionify/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	entries := repository.NewEntryRepo(db)
	activations := repository.NewActivationTokenRepo(db)
	remembers := repository.NewRememberTokenRepo(db)
	apiTokens := repository.NewAPITokenRepo(db)

	entrySvc := service.NewEntryService(entries, queue.NewPublisher())
	rememberSvc := service.NewRememberMeService(remembers, time.Duration(cfg.RememberTTLDays)*24*time.Hour)
	activationSvc := service.NewActivationService(activations, users, time.Duration(cfg.ActivationTTLHrs)*time.Hour, cfg.BcryptCost)

	limiter := service.NewFailedAttemptLimiter(cfg.APIFailThreshold, cfg.APIBlockWindow)
	limiter.StartCleanup(time.Minute)

	bootstrapAdmin(cfg, users)

	go func() {
		if err := queue.StartEntryConsumer(); err != nil {
			log.Printf("entry consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		Cfg:       cfg,
		RateCfg:   config.LoadRateLimitConfig(),
		CacheCfg:  config.LoadCacheConfig(),
		Redis:     rdb,
		Users:     users,
		APITokens: apiTokens,
		Remember:  rememberSvc,
		Limiter:   limiter,
		Auth:      handler.NewAuthHandler(cfg, users, rememberSvc, activationSvc),
		Profile:   handler.NewProfileHandler(cfg, users),
		Entries:   handler.NewEntryHandler(entrySvc),
		Admin:     handler.NewAdminHandler(users, activationSvc),
		Settings:  handler.NewSettingsHandler(apiTokens),
		API:       handler.NewPublicAPIHandler(entrySvc),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootstrapAdmin seeds the first account when the users table is empty.
// Unlike admin-created accounts it skips the activation flow: the
// password comes straight from the environment so the instance is usable
// immediately after first start.
func bootstrapAdmin(cfg config.Config, users *repository.UserRepo) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := users.Count(ctx)
	if err != nil {
		log.Fatalf("bootstrap: count users: %v", err)
	}
	if n > 0 {
		return
	}

	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("bootstrap: hash admin password: %v", err)
	}
	id, err := users.Create(ctx, cfg.AdminUsername, hash, "Admin", true, "en-US", "en")
	if err != nil {
		log.Fatalf("bootstrap: create admin: %v", err)
	}
	log.Printf("bootstrap: created admin user %q (id=%d)", cfg.AdminUsername, id)
}
