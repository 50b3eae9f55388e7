package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"alima/internal/adapter/api"
	"alima/internal/adapter/api/handler"
	apimiddleware "alima/internal/adapter/api/middleware"
	"alima/internal/adapter/api/router"
	"alima/internal/adapter/repository"
	"alima/internal/adapter/repository/memory"
	domainrepo "alima/internal/domain/repository"
	"alima/internal/domain/service"
	"alima/internal/infrastructure/cache"
	"alima/internal/infrastructure/events"
	"alima/internal/infrastructure/firebase"
	"alima/internal/infrastructure/metrics"
	"alima/internal/infrastructure/ratelimit"
	"alima/internal/infrastructure/storage"
	"alima/internal/infrastructure/websocket"
	"alima/internal/usecase"
	"alima/pkg/config"
	"alima/pkg/logger"
)

type repositories struct {
	users         domainrepo.UserRepository
	services      domainrepo.ServiceRepository
	conversations domainrepo.ConversationRepository
	notifications domainrepo.NotificationRepository
	transactions  domainrepo.TransactionRepository
	payments      domainrepo.PaymentRequestRepository
	reviews       domainrepo.ReviewRepository
	announcements domainrepo.PlatformNotificationRepository
	applications  domainrepo.ServiceApplicationRepository
}

func firestoreRepositories(client *firestore.Client) repositories {
	return repositories{
		users:         repository.NewFirestoreUserRepository(client),
		services:      repository.NewFirestoreServiceRepository(client),
		conversations: repository.NewFirestoreConversationRepository(client),
		notifications: repository.NewFirestoreNotificationRepository(client),
		transactions:  repository.NewFirestoreTransactionRepository(client),
		payments:      repository.NewFirestorePaymentRequestRepository(client),
		reviews:       repository.NewFirestoreReviewRepository(client),
		announcements: repository.NewFirestorePlatformNotificationRepository(client),
		applications:  repository.NewFirestoreServiceApplicationRepository(client),
	}
}

func memoryRepositories() repositories {
	store := memory.NewStore()
	return repositories{
		users:         memory.NewUserRepository(store),
		services:      memory.NewServiceRepository(store),
		conversations: memory.NewConversationRepository(store),
		notifications: memory.NewNotificationRepository(store),
		transactions:  memory.NewTransactionRepository(store),
		payments:      memory.NewPaymentRequestRepository(store),
		reviews:       memory.NewReviewRepository(store),
		announcements: memory.NewPlatformNotificationRepository(store),
		applications:  memory.NewServiceApplicationRepository(store),
	}
}

func credentials(cfg *config.Config) []option.ClientOption {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))}
	}
	if cfg.FirebaseServiceAccountPath != "" {
		if _, err := os.Stat(cfg.FirebaseServiceAccountPath); err != nil {
			logger.Error("Service account file does not exist: %s", cfg.FirebaseServiceAccountPath)
			os.Exit(1)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseServiceAccountPath)
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseServiceAccountPath)}
	}
	logger.Info("Using application default credentials")
	return nil
}

// mediaHost returns nil when no host can be built; uploads then fall back
// to placeholders.
func mediaHost(ctx context.Context, cfg *config.Config, opts []option.ClientOption) service.MediaHost {
	switch cfg.MediaProvider {
	case "s3":
		client, err := storage.NewS3Client(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			logger.Warn("S3 media host unavailable, serving placeholders: %v", err)
			return nil
		}
		return client
	default:
		if cfg.StorageBucket == "" {
			logger.Warn("STORAGE_BUCKET not set, serving placeholders")
			return nil
		}
		client, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			logger.Warn("Cloud Storage media host unavailable, serving placeholders: %v", err)
			return nil
		}
		return client
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := credentials(cfg)

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Error("Failed to initialize Firebase: %v", err)
		os.Exit(1)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Error("Failed to initialize Firebase Auth: %v", err)
		os.Exit(1)
	}

	identity, err := firebase.NewFirebaseAuthClient(ctx, authClient, cfg.FirebaseAPIKey)
	if err != nil {
		logger.Error("Failed to initialize identity toolkit: %v", err)
		os.Exit(1)
	}

	checks := map[string]handler.HealthCheck{}

	var repos repositories
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("Using the in-memory store; data is lost on restart")
		repos = memoryRepositories()
	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
		if err != nil {
			logger.Error("Failed to create Firestore client: %v", err)
			os.Exit(1)
		}
		defer firestoreClient.Close()

		repos = firestoreRepositories(firestoreClient)
		checks["firestore"] = func(ctx context.Context) error {
			_, err := firestoreClient.Collection("users").Limit(1).Documents(ctx).Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
	}

	host := mediaHost(ctx, cfg, opts)
	if host != nil {
		defer host.Close()
	}

	var profileCache usecase.ProfileCache = cache.NoopProfileCache{}
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, profile cache disabled: %v", err)
		} else {
			defer redisClient.Close()
			profileCache = cache.NewRedisProfileCache(redisClient, cfg.ProfileCacheTTL)
			checks["redis"] = func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}
		}
	}

	publisher := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	limiter := ratelimit.NewRateLimiter()
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	limiter.StartCleanupRoutine(5*time.Minute, stopCleanup)

	userUseCase := usecase.NewUserUseCase(repos.users, profileCache)
	authUseCase := usecase.NewAuthUseCase(repos.users, identity, userUseCase, publisher, limiter)
	notificationUseCase := usecase.NewNotificationUseCase(repos.notifications, publisher)
	messagingUseCase := usecase.NewMessagingUseCase(repos.conversations, userUseCase, publisher, limiter)
	serviceUseCase := usecase.NewServiceUseCase(repos.services, userUseCase)
	bookingUseCase := usecase.NewBookingUseCase(
		repos.transactions,
		repos.payments,
		repos.services,
		repos.reviews,
		userUseCase,
		messagingUseCase,
		notificationUseCase,
		publisher,
	)
	mediaUseCase := usecase.NewMediaUseCase(host)
	feedUseCase := usecase.NewFeedUseCase(repos.conversations, repos.notifications, messagingUseCase, cfg.FeedLimit)

	wsManager := websocket.NewManager(feedUseCase)
	platformUseCase := usecase.NewPlatformUseCase(repos.applications, repos.announcements, userUseCase, wsManager)

	handler.Setup(
		authUseCase,
		userUseCase,
		serviceUseCase,
		messagingUseCase,
		notificationUseCase,
		feedUseCase,
		bookingUseCase,
		mediaUseCase,
		platformUseCase,
		!cfg.IsDevelopment(),
	)
	handler.SetupHealthHandler(checks, map[string]string{
		"store":  cfg.StoreDriver,
		"events": events.Mode(publisher),
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(metrics.Middleware())
	e.Use(apimiddleware.RateLimit(limiter, ratelimit.ActionRequest))

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authUseCase, userUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.CORSOrigins)

	router.Setup(e, authMiddleware, limiter, wsHandler)

	go func() {
		logger.Info("Starting server on port %s (store=%s, media=%s, events=%s)", cfg.ServerPort, cfg.StoreDriver, cfg.MediaProvider, events.Mode(publisher))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsManager.Shutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
