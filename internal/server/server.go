package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/momentum/internal/config"
	"anoa.com/momentum/internal/jobs"
	"anoa.com/momentum/internal/middleware"

	catalogHttp "anoa.com/momentum/internal/modules/catalog/delivery/http"
	catalogRepo "anoa.com/momentum/internal/modules/catalog/repository"
	catalogService "anoa.com/momentum/internal/modules/catalog/service"

	counterRepo "anoa.com/momentum/internal/modules/counter/repository"
	counterService "anoa.com/momentum/internal/modules/counter/service"

	engineHttp "anoa.com/momentum/internal/modules/engine/delivery/http"
	engineService "anoa.com/momentum/internal/modules/engine/service"

	giftHttp "anoa.com/momentum/internal/modules/gift/delivery/http"
	giftRepo "anoa.com/momentum/internal/modules/gift/repository"
	giftService "anoa.com/momentum/internal/modules/gift/service"

	goalHttp "anoa.com/momentum/internal/modules/goal/delivery/http"
	goalRepo "anoa.com/momentum/internal/modules/goal/repository"
	goalService "anoa.com/momentum/internal/modules/goal/service"

	leaderboardHttp "anoa.com/momentum/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/momentum/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/momentum/internal/modules/leaderboard/service"

	ledgerHttp "anoa.com/momentum/internal/modules/ledger/delivery/http"
	ledgerRepo "anoa.com/momentum/internal/modules/ledger/repository"
	ledgerService "anoa.com/momentum/internal/modules/ledger/service"

	notifHttp "anoa.com/momentum/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/momentum/internal/modules/notification/repository"
	notifService "anoa.com/momentum/internal/modules/notification/service"

	progressRepo "anoa.com/momentum/internal/modules/progress/repository"

	searchService "anoa.com/momentum/internal/modules/search/service"

	streakHttp "anoa.com/momentum/internal/modules/streak/delivery/http"
	streakRepo "anoa.com/momentum/internal/modules/streak/repository"
	streakService "anoa.com/momentum/internal/modules/streak/service"

	userHttp "anoa.com/momentum/internal/modules/user/delivery/http"
	userRepo "anoa.com/momentum/internal/modules/user/repository"
	userService "anoa.com/momentum/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	runner      *jobs.Runner
	catalog     catalogService.Catalog
	search      searchService.SearchService
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	users := userRepo.NewUserRepository(db)

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := searchService.NewSearchService(meiliClient)

	authSvc := userService.NewAuthService(users)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	// Ledger
	ledgerRepository := ledgerRepo.NewLedgerRepository(db)
	ledgerSvc := ledgerService.NewLedgerService(ledgerRepository)
	ledgerHandler := ledgerHttp.NewLedgerHandler(ledgerSvc)

	// Catalog
	catalogRepository := catalogRepo.NewCatalogRepository(db)
	catalogSvc := catalogService.NewCatalogService(catalogRepository)

	// Counters and progress
	counterRepository := counterRepo.NewCounterRepository(db)
	progressRepository := progressRepo.NewProgressRepository(db)
	counterSvc := counterService.NewCounterService(counterRepository, ledgerRepository, progressRepository, users)

	// Streaks
	streakRepository := streakRepo.NewStreakRepository(db)
	streakSvc := streakService.NewStreakService(streakRepository, users)
	streakHandler := streakHttp.NewStreakHandler(streakSvc)

	// Leaderboards
	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository, redisClient, cfg.LeaderboardTTL, cfg.LeaderboardMax)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	// Goals
	goalRepository := goalRepo.NewGoalRepository(db)

	// Achievement engine
	engineSvc := engineService.NewEngine(
		catalogSvc,
		progressRepository,
		counterRepository,
		streakRepository,
		goalRepository,
		ledgerSvc,
		notificationSvc,
		leaderboardSvc,
	)
	eventHandler := engineHttp.NewEventHandler(engineSvc, counterSvc, streakSvc, notificationSvc)
	adminHandler := engineHttp.NewAdminHandler(engineSvc)

	goalSvc := goalService.NewGoalService(goalRepository, engineSvc, notificationSvc)
	goalHandler := goalHttp.NewGoalHandler(goalSvc)

	catalogHandler := catalogHttp.NewCatalogHandler(catalogSvc, searchSvc, engineSvc)

	// Gifts
	giftRepository := giftRepo.NewGiftRepository(db)
	giftSvc := giftService.NewGiftService(giftRepository, users, ledgerSvc, notificationSvc)
	giftHandler := giftHttp.NewGiftHandler(giftSvc)

	// Background jobs
	runner := jobs.NewRunner(cfg.JobBudget)
	jobs.RegisterAll(runner, streakSvc, leaderboardSvc, counterSvc, counterRepository, notificationSvc, engineSvc)
	runner.Start()

	router := gin.New()
	setupCORS(router, cfg)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(users)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/awards", adminHandler.ManualAward)
			adminGroup.POST("/recalculate/:user_id", adminHandler.Recalculate)
		}

		// Activity events
		protected.POST("/events/posts", eventHandler.PostCreated)
		protected.POST("/events/reactions", eventHandler.ReactionGiven)
		protected.POST("/events/comments", eventHandler.CommentMade)

		// Achievements
		protected.GET("/achievements", catalogHandler.List)
		protected.GET("/achievements/me", catalogHandler.MyProgress)
		protected.GET("/achievements/:id", catalogHandler.Get)

		// Streaks
		protected.GET("/streaks/me", streakHandler.GetMyStreak)
		protected.GET("/streaks/:user_id", streakHandler.GetUserStreak)

		// Goals
		protected.POST("/goals", goalHandler.Create)
		protected.GET("/goals", goalHandler.List)
		protected.PUT("/goals/:id/progress", goalHandler.UpdateProgress)
		protected.DELETE("/goals/:id", goalHandler.Delete)

		// Points and badges
		protected.GET("/points/balance", ledgerHandler.Balance)
		protected.GET("/points/history", ledgerHandler.History)
		protected.GET("/badges/me", ledgerHandler.Badges)

		// Gifts
		protected.POST("/gifts", giftHandler.Send)
		protected.GET("/gifts/sent", giftHandler.Sent)
		protected.GET("/gifts/received", giftHandler.Received)
		protected.GET("/gifts/badges", giftHandler.AvailableBadges)

		// Leaderboards
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/leaderboard/me", leaderboardHandler.GetMyRank)

		// Profile
		protected.PUT("/profile/timezone", authHandler.UpdateTimezone)

		// Notifications
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		runner:      runner,
		catalog:     catalogSvc,
		search:      searchSvc,
	}
}

// SyncCatalog seeds the achievement definitions and mirrors them into the
// search index. Called once at startup after migrations.
func (s *Server) SyncCatalog(ctx context.Context) error {
	if err := s.catalog.Sync(ctx); err != nil {
		return err
	}
	if err := s.search.IndexAchievements(s.catalog.All()); err != nil {
		log.Printf("catalog: index achievements: %v", err)
	}
	return nil
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
