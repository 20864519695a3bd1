package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/splitmate-api/internal/config"
	"github.com/yukikurage/splitmate-api/internal/constants"
	"github.com/yukikurage/splitmate-api/internal/database"
	"github.com/yukikurage/splitmate-api/internal/handlers"
	"github.com/yukikurage/splitmate-api/internal/logging"
	"github.com/yukikurage/splitmate-api/internal/middleware"
	"github.com/yukikurage/splitmate-api/internal/repository"
	"github.com/yukikurage/splitmate-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		fatal("Failed to connect to database", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		fatal("Failed to run migrations", err)
	}
	if err := database.SeedPlans(db); err != nil {
		fatal("Failed to seed plans", err)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		fatal("Failed to create Redis store", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Outbound email
	var notifier services.Notifier = services.LogNotifier{}
	if cfg.SendGridAPIKey != "" {
		notifier = services.NewSendGridNotifier(services.SendGridConfig{
			APIKey:           cfg.SendGridAPIKey,
			Host:             cfg.SendGridHost,
			From:             cfg.SendGridMailFrom,
			InviteTemplate:   cfg.SendGridInviteTemplate,
			ReminderTemplate: cfg.SendGridReminderTemplate,
		})
	} else {
		slog.Warn("SENDGRID_API_KEY not set, emails will only be logged")
	}
	gate := services.NewStaticFeatureGate(cfg.SendMailActions, cfg.SignUpDomains)

	// Item suggestions are optional
	var suggester services.ItemSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewOpenAISuggester(cfg.OpenAIAPIKey)
	}

	// Initialize services
	repo := repository.NewStore(db)
	authService := services.NewAuthService(repo, gate)
	eventService := services.NewEventService(repo, notifier, gate, suggester)
	membershipService := services.NewMembershipService(repo, notifier, gate)
	itemService := services.NewItemService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, eventService)
	itemHandler := handlers.NewItemHandler(itemService, eventService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SplitMate API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.DELETE("/me", middleware.RequireAuth(), membershipHandler.DeleteAccount)
		}

		// User lookup (protected)
		api.GET("/users/find", middleware.RequireAuth(), authHandler.FindUser)

		// Event routes (protected)
		events := api.Group("/events")
		events.Use(middleware.RequireAuth())
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.ListEvents)

			event := events.Group("/:id", middleware.RequireEventID())
			{
				event.GET("", eventHandler.GetEvent)
				event.PATCH("", eventHandler.UpdateEvent)
				event.DELETE("", eventHandler.DeleteEvent)
				event.POST("/reminder", eventHandler.SendReminder)
				event.GET("/suggestions", eventHandler.SuggestItems)

				event.POST("/invite", membershipHandler.Invite)
				event.POST("/join", membershipHandler.Join)
				event.POST("/dismiss", membershipHandler.Dismiss)
				event.POST("/leave", membershipHandler.Leave)
				event.POST("/transfer/:user_id", membershipHandler.TransferOrganizer)
				event.DELETE("/members/:user_id", membershipHandler.RemoveMember)
				event.POST("/archive/:action", membershipHandler.Archive)

				event.PATCH("/items", itemHandler.ApplyAction)
				event.GET("/items/:item_id", eventHandler.GetItem)
				event.PATCH("/items/:item_id/poll/:option_id", itemHandler.VotePoll)
			}
		}
	}

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server starting", "addr", addr)
	if err := r.Run(addr); err != nil {
		fatal("Failed to start server", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
