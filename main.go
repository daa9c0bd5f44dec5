package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MiniDrive/config"
	"MiniDrive/internal/handler"
	"MiniDrive/internal/repo"
	"MiniDrive/internal/service"
	"MiniDrive/internal/storage"
	"MiniDrive/router"
	"MiniDrive/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main initializes services and starts the HTTP server.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}
	log, err := utils.NewLogger(cfg.LogLevel, cfg.LogProduction)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.BackendMinio {
		client, err := storage.NewMinioClient(ctx, storage.MinioConfig{
			Host:     cfg.MinioHost,
			Port:     cfg.MinioPort,
			Username: cfg.MinioUsername,
			Password: cfg.MinioPassword,
			UseSSL:   cfg.MinioUseSSL,
			Bucket:   cfg.BucketName,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewMinioStore(client, cfg.BucketName), nil
	}
	return storage.NewLocalStore(cfg.StorageRoot)
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(db); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	store, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	log.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	var guard service.LoginGuard = service.NoopGuard{}
	if cfg.RedisEnabled() {
		var rdb *redis.Client
		rdb, err = repo.OpenRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		guard = service.NewRedisLoginGuard(rdb, cfg.LoginMaxFailures, cfg.LoginLockoutWindow)
		log.Info("login lockout enabled", zap.Int("max_failures", cfg.LoginMaxFailures))
	}

	gate := service.NewAdminGate(cfg.AdminSecret)
	auth, err := service.NewAuthService(db, utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), gate, guard, cfg.BcryptCost, log)
	if err != nil {
		return err
	}
	shares := service.NewShareService(db, store, log)
	h := handler.New(handler.Deps{
		Auth:      auth,
		Admin:     service.NewAdminService(db, store, gate, log),
		Files:     service.NewFileService(db, store, cfg.MaxUploadBytes, log),
		Shares:    shares,
		Comments:  service.NewCommentService(db, shares),
		MaxUpload: cfg.MaxUploadBytes,
		Log:       log,
	})

	if cfg.LogProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.InitRouter(h, auth, cfg.AllowOrigin, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
