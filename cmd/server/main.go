package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/config"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/database"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/handlers"
	"github.com/yukikurage/study-tracker-api/internal/kvstore"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"github.com/yukikurage/study-tracker-api/internal/router"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("invalid TIMEZONE", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	created, err := database.MigrateDatabase(database.GetDB())
	if err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	if len(created) > 0 {
		log.Info("indexes created", zap.Strings("indexes", created))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Guest workspaces
	kv, err := kvstore.Open(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open guest store", zap.String("backend", cfg.KVBackend), zap.Error(err))
	}
	defer kv.Close()

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal("failed to create session store", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	calendar := services.NewCalendar(time.Now, location)
	guests := services.NewGuestStore(kv, constants.GuestSessionTTL, time.Now)
	workspaces := services.NewWorkspaces(userRepo, taskRepo, guests)

	streakService := services.NewStreakService(groupRepo, calendar, log)
	taskService := services.NewTaskService(streakService, aiService)
	historyService := services.NewHistoryService()
	groupService := services.NewGroupService(groupRepo, gamification.NewDirectory(), calendar, log)
	authService := services.NewAuthService(userRepo, guests)

	r := router.New(router.Deps{
		Handlers: router.Handlers{
			Auth:  handlers.NewAuthHandler(authService, workspaces, streakService, log),
			Task:  handlers.NewTaskHandler(taskService, historyService, log),
			Group: handlers.NewGroupHandler(groupService, log),
		},
		Workspaces:   workspaces,
		GroupService: groupService,
		SessionStore: store,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	// Start server
	log.Info("server starting", zap.String("addr", srv.Addr), zap.String("kv_backend", cfg.KVBackend))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("failed to start server", zap.Error(err))
	}
	log.Info("server stopped")
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	switch cfg.SessionStore {
	case "cookie":
		return cookie.NewStore([]byte(cfg.SessionSecret)), nil
	default:
		return redisStore.NewStore(
			10,              // Redis pool size
			"tcp",           // network type
			cfg.RedisAddr(), // Redis address from config
			"",              // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret), // authentication key
		)
	}
}
