package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-core-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/revocation"
	attendanceService "github.com/cmlabs-hris/hris-core-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hris-core-go/internal/service/auth"
	leaveService "github.com/cmlabs-hris/hris-core-go/internal/service/leave"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer repos.close(context.Background())

	var revoked revocation.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := revocation.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("redis close", "error", err)
			}
		}()
		revoked = revocation.NewRedisStore(redisClient)
	} else {
		slog.Warn("REDIS_ADDR not set, revoked refresh tokens are kept in memory")
		revoked = revocation.NewMemoryStore()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	authService := serviceAuth.NewAuthService(repos.users, JWTService, revoked)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, location)
	leaveSvc := leaveService.NewLeaveService(repos.leave)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			LoginRateLimit: cfg.App.LoginRateLimit,
			Environment:    cfg.App.Env,
			Production:     cfg.IsProduction(),
			Version:        version,
			LogLevel:       cfg.LogLevel(),
		},
		authService,
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
