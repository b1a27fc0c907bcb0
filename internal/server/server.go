package server

import (
	"context"
	"strings"
	"time"

	"bibliomaniacs.org/bookreviews/internal/config"
	"bibliomaniacs.org/bookreviews/internal/entity"
	"bibliomaniacs.org/bookreviews/internal/middleware"
	"bibliomaniacs.org/bookreviews/pkg/cache"

	adminHttp "bibliomaniacs.org/bookreviews/internal/modules/admin/delivery/http"
	adminRepo "bibliomaniacs.org/bookreviews/internal/modules/admin/repository"
	adminService "bibliomaniacs.org/bookreviews/internal/modules/admin/service"

	bookofweekHttp "bibliomaniacs.org/bookreviews/internal/modules/bookofweek/delivery/http"
	bookofweekRepo "bibliomaniacs.org/bookreviews/internal/modules/bookofweek/repository"
	bookofweekService "bibliomaniacs.org/bookreviews/internal/modules/bookofweek/service"

	maildraftHttp "bibliomaniacs.org/bookreviews/internal/modules/maildraft/delivery/http"
	maildraftService "bibliomaniacs.org/bookreviews/internal/modules/maildraft/service"

	notifHttp "bibliomaniacs.org/bookreviews/internal/modules/notification/delivery/http"
	notifRepo "bibliomaniacs.org/bookreviews/internal/modules/notification/repository"
	notifService "bibliomaniacs.org/bookreviews/internal/modules/notification/service"

	reviewHttp "bibliomaniacs.org/bookreviews/internal/modules/review/delivery/http"
	reviewRepo "bibliomaniacs.org/bookreviews/internal/modules/review/repository"
	reviewService "bibliomaniacs.org/bookreviews/internal/modules/review/service"

	statHttp "bibliomaniacs.org/bookreviews/internal/modules/stat/delivery/http"
	statService "bibliomaniacs.org/bookreviews/internal/modules/stat/service"

	userHttp "bibliomaniacs.org/bookreviews/internal/modules/user/delivery/http"
	userRepo "bibliomaniacs.org/bookreviews/internal/modules/user/repository"
	userService "bibliomaniacs.org/bookreviews/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := userRepo.NewUserRepository(db)
	admins := adminRepo.NewAdminEmailRepository(db)
	reviews := reviewRepo.NewReviewRepository(db)
	inboxes := notifRepo.NewInboxRepository(db)
	books := bookofweekRepo.NewBookOfWeekRepository(db)

	queryCache := cache.NewQueryCache(redisClient, "reviews", cfg.ReviewCacheTTL)

	authSvc := userService.NewAuthService(users, admins, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(admins, users)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	dispatcher := notifService.NewDispatcher(inboxes, users, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(dispatcher, redisClient, cfg.SenderName)

	draftSvc := maildraftService.NewDraftService(reviews, queryCache, cfg.SenderName)
	draftHandler := maildraftHttp.NewDraftHandler(draftSvc, cfg.SenderEmail)

	reviewSvc := reviewService.NewReviewService(reviews, users, dispatcher, queryCache)
	workflow := reviewService.NewTransitionWorkflow(reviews, dispatcher, draftSvc, queryCache, cfg.SenderName, cfg.StagedTransitionTTL)
	workflow.StartSweeper(context.Background(), time.Minute)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc, workflow)

	statSvc := statService.NewStatService(reviews, queryCache)
	statHandler := statHttp.NewStatHandler(statSvc)

	bookSvc := bookofweekService.NewBookOfWeekService(books, dispatcher, cfg.SenderName)
	bookHandler := bookofweekHttp.NewBookOfWeekHandler(bookSvc)

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Role resolution is open: callers without an account get "no_account".
	api.GET("/users/role", authMiddleware.AccessGate(middleware.Gate{}), authHandler.Role)

	// Routes for any signed-in account
	protected := api.Group("")
	protected.Use(authMiddleware.AccessGate(middleware.Gate{
		Allow: []string{entity.RoleUser, entity.RoleAdmin},
	}))
	{
		protected.POST("/reviews", reviewHandler.Submit)
		protected.GET("/reviews/me", reviewHandler.ListMine)
		protected.PUT("/reviews/me/:id", reviewHandler.UpdateOwn)
		protected.DELETE("/reviews/me/:id", reviewHandler.DeleteOwn)

		protected.GET("/notifications", notificationHandler.GetInbox)
		protected.POST("/notifications/clear", notificationHandler.ClearType)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.GET("/book-of-week", bookHandler.Get)
	}

	// Admin routes
	adminGroup := api.Group("")
	adminGroup.Use(authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/reviews", reviewHandler.List)
		adminGroup.GET("/reviews/stats", statHandler.Overview)
		adminGroup.PATCH("/reviews/:id", reviewHandler.UpdateAdminFields)
		adminGroup.POST("/reviews/import", reviewHandler.BulkImport)

		adminGroup.POST("/reviews/:id/transition", reviewHandler.StageTransition)
		adminGroup.POST("/reviews/:id/transition/confirm", reviewHandler.ConfirmTransition)
		adminGroup.DELETE("/reviews/:id/transition", reviewHandler.CancelTransition)

		adminGroup.GET("/reviews/:id/email-draft", draftHandler.GetDraft)
		adminGroup.POST("/reviews/:id/email-sent", draftHandler.MarkSent)

		adminGroup.POST("/cache/clear", reviewHandler.ClearCache)

		adminGroup.POST("/notifications/dispatch", notificationHandler.Dispatch)
		adminGroup.POST("/notifications/broadcast", notificationHandler.Broadcast)

		adminGroup.POST("/users/uid-by-email", authHandler.UIDByEmail)

		adminGroup.GET("/admins", adminHandler.List)
		adminGroup.POST("/admins", adminHandler.Add)
		adminGroup.DELETE("/admins", adminHandler.Remove)

		adminGroup.PUT("/book-of-week", bookHandler.Update)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
