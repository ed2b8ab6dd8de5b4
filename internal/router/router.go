package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/shahriar-rahim/socialite/backend/internal/blobstore"
	"github.com/shahriar-rahim/socialite/backend/internal/cache"
	"github.com/shahriar-rahim/socialite/backend/internal/handlers"
	"github.com/shahriar-rahim/socialite/backend/internal/mediatx"
	"github.com/shahriar-rahim/socialite/backend/internal/middleware"
	"github.com/shahriar-rahim/socialite/backend/internal/models"
	"github.com/shahriar-rahim/socialite/backend/internal/repositories"
	"github.com/shahriar-rahim/socialite/backend/pkg/config"
	"github.com/shahriar-rahim/socialite/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, fb *firebase.App) {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostMedia{},
		&models.Comment{},
		&models.Reply{},
		&models.Like{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	postRepo := repositories.NewPostgresPostRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	replyRepo := repositories.NewPostgresReplyRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	notificationRepo := repositories.NewMongoNotificationRepository(db.Mongo.Database("socialite"))

	// --- Media pipeline ---
	blobs := blobstore.NewFirebaseStorage(fb.Bucket, fb.BucketName, cfg.BlobTimeout)
	coordinator := mediatx.New(blobs, postRepo, "posts")
	feedCache := cache.NewFeedCache(db.Redis, cfg.FeedCacheTTL)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User profile routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(coordinator, postRepo, userRepo, likeRepo, commentRepo, feedCache, cfg.MaxFileSize)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, replyRepo, postRepo, userRepo, notificationRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Reply routes
	replyHandler := handlers.NewReplyHandler(replyRepo, commentRepo, userRepo, notificationRepo)
	replyHandler.RegisterReplyRoutes(api)
	log.Println("Reply routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, commentRepo, replyRepo, notificationRepo)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	// Upload routes
	uploadHandler := handlers.NewUploadHandler(blobs, "uploads", cfg.MaxFileSize)
	uploadHandler.RegisterUploadRoutes(api)
	log.Println("Upload routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
