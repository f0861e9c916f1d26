package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/time/rate"

	"github.com/Skufu/symptomcheck/internal/config"
	"github.com/Skufu/symptomcheck/internal/credential"
	"github.com/Skufu/symptomcheck/internal/gemini"
	"github.com/Skufu/symptomcheck/internal/httpapi"
	"github.com/Skufu/symptomcheck/internal/prediction"
	"github.com/Skufu/symptomcheck/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Env)
	slog.SetDefault(logger)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	deps := httpapi.Deps{
		Logger:    logger,
		Recorder:  store.NopRecorder{},
		RateLimit: rate.Limit(cfg.RateLimit),
		RateBurst: cfg.RateBurst,
	}

	if cfg.EnableDB {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		recorder := store.NewPostgresRecorder(pool)
		if err := recorder.Migrate(ctx); err != nil {
			logger.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		deps.DB = pool
		deps.Recorder = recorder
	}

	sessions, closeSessions, err := setupSessions(ctx, cfg, logger)
	if err != nil {
		logger.Error("session store unavailable", "err", err)
		os.Exit(1)
	}
	defer closeSessions()
	deps.Sessions = sessions

	mode := cfg.Mode()
	resolver := credential.NewResolver(mode, cfg.GeminiAPIKey)
	if mode == credential.ModeEnv && !resolver.HasServerKey() {
		logger.Warn("GEMINI_API_KEY is not set; predictions will fail until it is configured")
	}

	client := gemini.NewClient(cfg.GeminiBaseURL, gemini.WithTimeout(cfg.GeminiTimeout))
	deps.Credentials = resolver
	deps.Predictor = prediction.NewService(client, resolver, cfg.GeminiModel, logger)
	deps.StaticRoot = cfg.StaticDir
	if deps.StaticRoot == "" {
		deps.StaticRoot = detectStaticRoot()
	}

	router := httpapi.NewRouter(deps)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.GeminiTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	logger.Info("server listening",
		"port", cfg.Port,
		"credential_mode", mode,
		"model", cfg.GeminiModel,
		"db", cfg.EnableDB,
		"static_root", deps.StaticRoot,
	)
	waitForShutdown(server, logger)
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(env, config.EnvDev) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func setupSessions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (credential.SessionStore, func(), error) {
	if !strings.EqualFold(cfg.SessionBackend, config.SessionBackendRedis) {
		return credential.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	rs := credential.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL, logger)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		_ = rs.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return rs, func() {
		if err := rs.Close(); err != nil {
			logger.Warn("redis close failed", "err", err)
		}
	}, nil
}

func waitForShutdown(server *http.Server, logger *slog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

// detectStaticRoot finds the web/ directory holding index.html, looking in
// the working directory and up to two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		for _, root := range []string{filepath.Join(dir, "web"), dir} {
			if fileExists(filepath.Join(root, "index.html")) {
				return root
			}
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
