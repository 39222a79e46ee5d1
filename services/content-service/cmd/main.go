package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/postly-api/services/content-service/internal/config"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/handler"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/repository"
	"github.com/vasapolrittideah/postly-api/services/content-service/internal/usecase"
	"github.com/vasapolrittideah/postly-api/shared/auth"
	"github.com/vasapolrittideah/postly-api/shared/cache"
	"github.com/vasapolrittideah/postly-api/shared/discovery"
	"github.com/vasapolrittideah/postly-api/shared/logger"
	"github.com/vasapolrittideah/postly-api/shared/mailer"
	"github.com/vasapolrittideah/postly-api/shared/security"
	"github.com/vasapolrittideah/postly-api/shared/store"
	"github.com/vasapolrittideah/postly-api/shared/utilities"
)

const (
	shutdownTimeout     = 30 * time.Second
	healthCheckInterval = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.ServiceName, cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("content service stopped")
	}
}

func run(cfg *config.ContentServiceConfig, log *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	documentStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := documentStore.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	userRepo, err := repository.NewUserRepository(ctx, documentStore)
	if err != nil {
		return fmt.Errorf("failed to prepare users: %w", err)
	}
	postRepo, err := repository.NewPostRepository(ctx, documentStore)
	if err != nil {
		return fmt.Errorf("failed to prepare posts: %w", err)
	}
	commentRepo, err := repository.NewCommentRepository(ctx, documentStore)
	if err != nil {
		return fmt.Errorf("failed to prepare comments: %w", err)
	}

	jwtAuthenticator, err := auth.NewJWTAuthenticator(auth.Config{
		Secret: cfg.Token.AccessTokenSecret,
		Issuer: cfg.Token.Issuer,
		TTL:    cfg.Token.AccessTokenExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("failed to create token authenticator: %w", err)
	}

	var notifier usecase.RegistrationNotifier
	if cfg.SMTP.Enabled() {
		m, err := mailer.NewMailer(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to create mailer: %w", err)
		}
		notifier = usecase.NewWelcomeMailNotifier(m)
	}

	var postCache usecase.PostCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.New(log, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer redisCache.Close()
		postCache = redisCache
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, security.NewPasswordHasher(), jwtAuthenticator, notifier, log)
	postUsecase := usecase.NewPostUsecase(postRepo, postCache, cfg.Redis.PostTTL, log)
	commentUsecase := usecase.NewCommentUsecase(commentRepo)

	httpHandler, err := handler.NewContentHTTPHandler(
		authUsecase,
		postUsecase,
		commentUsecase,
		documentStore,
		cfg.RequestTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create http handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcListener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.GRPCPort)))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := utilities.RegisterHealthServer(grpcServer)
	go utilities.WatchHealth(ctx, healthServer, healthCheckInterval, documentStore.Ping)

	serveErr := make(chan error, 2)

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		log.Info().Int("port", cfg.GRPCPort).Msg("grpc server listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			serveErr <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	if cfg.ConsulAddr != "" {
		deregister, err := registerWithConsul(cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to register with consul")
		} else {
			defer deregister()
		}
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info().Msg("content service stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.ContentServiceConfig, log *zerolog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		return store.NewMemoryStore(), nil
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		mongoStore, err := store.NewMongoStore(connectCtx, log, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return mongoStore, nil
	}
}

func registerWithConsul(cfg *config.ContentServiceConfig, log *zerolog.Logger) (func(), error) {
	registry, err := discovery.NewConsulRegistry(log, cfg.ConsulAddr)
	if err != nil {
		return nil, err
	}

	instanceID := fmt.Sprintf("%s-%s", cfg.ServiceName, uuid.NewString())
	if err := registry.Register(discovery.Registration{
		ID:       instanceID,
		Name:     cfg.ServiceName,
		Host:     cfg.Host,
		HTTPPort: cfg.HTTPPort,
		GRPCPort: cfg.GRPCPort,
		Tags:     []string{"http", "grpc"},
	}); err != nil {
		return nil, err
	}

	return func() {
		if err := registry.Deregister(instanceID); err != nil {
			log.Warn().Err(err).Str("instance_id", instanceID).Msg("failed to deregister from consul")
		}
	}, nil
}
