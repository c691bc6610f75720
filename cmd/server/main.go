package main

import (
	"context"
	"fmt"
	"idea-review-platform/internal/attachment"
	"idea-review-platform/internal/collab"
	"idea-review-platform/internal/config"
	"idea-review-platform/internal/db"
	"idea-review-platform/internal/decision"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/idea"
	"idea-review-platform/internal/identity"
	"idea-review-platform/internal/logger"
	"idea-review-platform/internal/middleware"
	"idea-review-platform/internal/review"
	"idea-review-platform/internal/user"
	"idea-review-platform/internal/worker"
	"idea-review-platform/redis"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Init(config.AppConfig.Environment)

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	if config.AppConfig.Environment == "development" {
		db.SeedData()
	}

	// Cache and background workers
	cache := redis.NewCache(config.AppConfig.RedisAddress)
	defer cache.Close()
	pool := worker.NewPool(4)

	// Attachment store
	attachments := newAttachmentStore()

	// Repositories
	userRepo := user.NewRepository(db.AppDb)
	ideaRepo := idea.NewRepository(db.AppDb)
	reviewRepo := review.NewRepository(db.AppDb)
	decisionRepo := decision.NewRepository(db.AppDb)
	collabRepo := collab.NewRepository(db.AppDb)
	directory := identity.NewDirectory(db.AppDb)

	// Services
	userService := user.NewService(userRepo)
	ideaService := idea.NewService(ideaRepo, attachments, cache, pool)
	invalidator := idea.NewCacheInvalidator(cache)
	reviewService := review.NewService(
		reviewRepo,
		ideaRepo,
		directory,
		map[domain.Track]review.Policy{
			domain.TrackIdea:      {MinCommentLen: config.AppConfig.IdeaMinCommentLen},
			domain.TrackChallenge: {MinCommentLen: config.AppConfig.ChallengeMinCommentLen},
		},
		config.AppConfig.ReviewedDashboardLimit,
	)
	decisionService := decision.NewService(
		decisionRepo,
		ideaRepo,
		reviewRepo,
		directory,
		decision.PoliciesFromConfig(config.AppConfig),
		invalidator,
	)
	collabService := collab.NewService(collabRepo, ideaRepo, collab.BrokerPolicy{
		RerequestAfterRejection: config.AppConfig.RerequestAfterRejection,
	}, invalidator)

	// Handlers
	userHandler := user.NewHandler(userService, directory)
	ideaHandler := idea.NewHandler(ideaService)
	reviewHandler := review.NewHandler(reviewService)
	decisionHandler := decision.NewHandler(decisionService)
	collabHandler := collab.NewHandler(collabService)

	authMw := &middleware.Auth{UserService: userService, Roles: directory}

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.POST("/refresh", userHandler.RefreshToken)
	router.DELETE("/logout", authMw.AuthMiddleWare(), userHandler.Logout)
	router.GET("/profile", authMw.AuthMiddleWare(), userHandler.GetProfile)
	router.GET("/users", authMw.AuthMiddleWare(), userHandler.SearchUsers)
	router.POST("/users/:id/roles", authMw.AuthMiddleWare(), authMw.RequireRole(domain.RoleAdmin), userHandler.GrantRole)
	router.DELETE("/users/:id/roles", authMw.AuthMiddleWare(), authMw.RequireRole(domain.RoleAdmin), userHandler.RevokeRole)

	// Idea routes
	ideas := router.Group("/ideas", authMw.AuthMiddleWare())
	{
		ideas.POST("", ideaHandler.Create)
		ideas.GET("", ideaHandler.ShowMine)
		ideas.GET("/:id", ideaHandler.Show)
		ideas.PUT("/:id", ideaHandler.Update)
		ideas.POST("/:id/submit", ideaHandler.Submit)
		ideas.POST("/:id/withdraw", ideaHandler.Withdraw)
		ideas.PUT("/:id/team", ideaHandler.SetTeamMembers)
		ideas.PUT("/:id/collaboration", ideaHandler.SetCollaboration)
		ideas.POST("/:id/like", ideaHandler.Like)
		ideas.POST("/:id/attachment", ideaHandler.UploadAttachment)
		ideas.GET("/:id/attachment", ideaHandler.DownloadAttachment)
		ideas.DELETE("/:id/attachment", ideaHandler.RemoveAttachment)

		// Review stage engine
		ideas.POST("/:id/reviews", reviewHandler.SubmitReview)

		// Decision compiler
		ideas.POST("/:id/decision", decisionHandler.MakeDecision)
		ideas.GET("/:id/decision/eligibility", decisionHandler.ShowEligibility)
		ideas.GET("/:id/decisions", decisionHandler.ListForIdea)

		// Collaboration broker + proposals + versions
		ideas.POST("/:id/collaboration-requests", collabHandler.SendRequest)
		ideas.GET("/:id/collaboration-requests", collabHandler.ListRequestsForIdea)
		ideas.POST("/:id/proposals", collabHandler.CreateProposal)
		ideas.GET("/:id/proposals", collabHandler.ListProposalsForIdea)
		ideas.GET("/:id/versions", collabHandler.ListVersions)
		ideas.GET("/:id/versions/:version", collabHandler.ShowVersion)
		ideas.POST("/:id/versions/:version/rollback", collabHandler.Rollback)
	}

	// Reviewer dashboards
	router.GET("/reviews/queue", authMw.AuthMiddleWare(), reviewHandler.ListReviewable)
	router.GET("/reviews/mine", authMw.AuthMiddleWare(), reviewHandler.ListMyReviews)

	// Collaboration request/proposal views detached from one idea
	router.PUT("/collaboration-requests/:requestId", authMw.AuthMiddleWare(), collabHandler.RespondToRequest)
	router.DELETE("/collaboration-requests/:requestId", authMw.AuthMiddleWare(), collabHandler.CancelRequest)
	router.GET("/collaboration-requests", authMw.AuthMiddleWare(), collabHandler.ListMyRequests)
	router.PUT("/proposals/:proposalId", authMw.AuthMiddleWare(), collabHandler.RespondToProposal)
	router.GET("/proposals", authMw.AuthMiddleWare(), collabHandler.ListMyProposals)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		logger.Log.Info().Str("port", serverPort).Msg("Server listening")
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown error")
	}

	pool.Shutdown()
	logger.Log.Info().Msg("Server shutdown complete")
}

func newAttachmentStore() attachment.Store {
	if config.AppConfig.AttachmentDriver == "s3" {
		store, err := attachment.NewS3Store(
			config.AppConfig.S3Endpoint,
			config.AppConfig.S3AccessKey,
			config.AppConfig.S3SecretKey,
			config.AppConfig.S3Bucket,
			config.AppConfig.S3UseSSL,
		)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("s3 attachment store init failed")
		}
		return store
	}

	store, err := attachment.NewLocalStore(config.AppConfig.AttachmentDir)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("local attachment store init failed")
	}
	return store
}
