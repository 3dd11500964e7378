package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/GunarsK-portfolio/user-service/internal/config"
	"github.com/GunarsK-portfolio/user-service/internal/handlers"
	"github.com/GunarsK-portfolio/user-service/internal/logging"
	"github.com/GunarsK-portfolio/user-service/internal/metrics"
	"github.com/GunarsK-portfolio/user-service/internal/repository"
	"github.com/GunarsK-portfolio/user-service/internal/routes"
	"github.com/GunarsK-portfolio/user-service/internal/service"
	"github.com/GunarsK-portfolio/user-service/pkg/redis"
)

// Server timeouts. WriteTimeout leaves room for queued bcrypt work.
const (
	readHeaderTimeout = 2 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func serveCommand() *cobra.Command {
	var port, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			if dbPath != "" {
				cfg.UsersDBPath = dbPath
			}

			logger := logging.Setup("user-service", cfg.LogFormat, cfg.LogLevel, os.Stdout)
			slog.SetDefault(logger)

			if err := serve(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to the users JSON file (overrides USERS_DB_PATH)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	hasher, err := service.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		return err
	}
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	var (
		denylist repository.TokenDenylist
		checks   []handlers.HealthCheck
	)
	if cfg.RevocationEnabled() {
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		denylist = repository.NewRedisDenylist(client)
		checks = append(checks, handlers.HealthCheck{Name: "redis", Check: redis.Ping(client)})
		logger.Info("token revocation enabled", "redis", net.JoinHostPort(cfg.RedisHost, cfg.RedisPort))
	}

	if cfg.BasicAuthUsername == "" || cfg.BasicAuthPassword == "" {
		logger.Warn("basic auth credentials not configured; basic-gated routes reject every request")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := repository.NewFileUserRepository(cfg.UsersDBPath)
	router := gin.New()
	routes.Setup(router, routes.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics.New(),
		AuthService: service.NewAuthService(userRepo, hasher, tokens, denylist),
		UserService: service.NewUserService(userRepo),
		Health:      handlers.NewHealthHandler(checks...),
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("starting user service",
		"address", listener.Addr().String(),
		"db", cfg.UsersDBPath,
		"environment", cfg.Environment,
	)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return grp.Wait()
}
