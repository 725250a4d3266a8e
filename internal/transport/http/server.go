package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chirper/internal/config"
	"chirper/internal/database"
	"chirper/internal/handler"
	"chirper/internal/logger"
	"chirper/internal/redis"
	"chirper/internal/repository"
	"chirper/internal/service"
	"chirper/internal/session"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// stores is the set of repositories for the configured backend.
type stores struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	notifications repository.NotificationRepository
	tx            repository.TxRunner
	close         func(ctx context.Context) error
}

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// 2. Connect to the store
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	}()

	// 3. Optional collaborators
	var revoker service.SessionRevoker
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		revoker = session.NewDenylist(rdb.Client)
		log.Info("session revocation enabled")
	} else {
		log.Warn("REDIS_URL not set; logout only clears the cookie")
	}

	var media service.MediaUploader
	if cfg.Media.Enabled() {
		m, err := service.NewMediaService(ctx, cfg.Media, log)
		if err != nil {
			return fmt.Errorf("failed to init media storage: %w", err)
		}
		media = m
		log.Info("media storage enabled")
	} else {
		log.Warn("R2 settings incomplete; image uploads are disabled")
	}

	// 4. Wire services and handlers
	authService := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL(), revoker, log)
	userService := service.NewUserService(st.users, media, log)
	followService := service.NewFollowService(st.users, st.notifications, st.tx, log)
	postService := service.NewPostService(st.posts, st.users, st.notifications, st.tx, media, log)
	feedService := service.NewFeedService(st.posts, st.users, log)
	notifService := service.NewNotificationService(st.notifications, st.users, log)

	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService, cfg.CookieSecure, log),
		UserHandler:         handler.NewUserHandler(userService, log),
		FollowHandler:       handler.NewFollowHandler(followService, log),
		FeedHandler:         handler.NewFeedHandler(feedService, log),
		PostHandler:         handler.NewPostHandler(postService, log),
		NotificationHandler: handler.NewNotificationHandler(notifService, log),
		Tokens:              authService,
		MaxBodyBytes:        maxBodyBytes(cfg.Media.MaxUploadBytes),
		Logger:              log,
	})

	// 5. Serve until SIGINT/SIGTERM
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// maxBodyBytes is the request body limit: two base64-encoded images of
// maxUpload bytes each (a profile update with avatar and cover) plus 1MB for
// the data URI prefixes and the other JSON fields.
func maxBodyBytes(maxUpload int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(maxUpload)))*2 + 1<<20
}

// openStores connects the configured backend and bootstraps its indexes or tables.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.ConnectPostgres(cfg.PostgresDSN(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		return &stores{
			users:         repository.NewPostgresUserRepository(db),
			posts:         repository.NewPostgresPostRepository(db),
			notifications: repository.NewPostgresNotificationRepository(db),
			tx:            repository.NewPostgresTxRunner(db),
			close:         func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		if !cfg.MongoTransactions {
			log.Warn("mongo transactions disabled; two-document writes use compensation")
		}
		return &stores{
			users:         repository.NewMongoUserRepository(db),
			posts:         repository.NewMongoPostRepository(db),
			notifications: repository.NewMongoNotificationRepository(db),
			tx:            repository.NewMongoTxRunner(client, cfg.MongoTransactions),
			close:         client.Disconnect,
		}, nil
	}
}
