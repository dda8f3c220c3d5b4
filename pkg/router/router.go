package router

import (
	"wiki-character-chat/backend/internal/api"
	"wiki-character-chat/backend/pkg/di"
	"wiki-character-chat/backend/pkg/errors"
	"wiki-character-chat/backend/pkg/logger"
	"wiki-character-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiterOpts := middleware.DefaultRateLimiterOptions()
	rateLimiterOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	rateLimiterOpts.Burst = container.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rateLimiterOpts)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Container.Config.Security.AllowedOrigins))

	inviteGate := middleware.NewInviteKeyGate(r.Container.DB, r.Container.Redis, r.Logger)

	characterHandler := api.NewCharacterHandler(
		r.Container.CreationService,
		r.Container.CharacterService,
		r.Container.PortraitStore,
	)
	chatHandler := api.NewChatHandler(r.Container.ConversationService)
	healthHandler := api.NewHealthHandler(r.Container.DB)

	v1 := r.Engine.Group("/api/v1")

	// Public routes: health, portraits and placeholder avatars bypass the
	// invite gate so stored image references keep working in clients
	v1.GET("/health", healthHandler.Check)
	v1.GET("/characters/images/:fileName", characterHandler.ServePortrait)
	v1.GET("/characters/placeholder-avatar/:name", characterHandler.ServePlaceholderAvatar)

	// Gated routes
	gated := v1.Group("/")
	gated.Use(inviteGate.Middleware())
	{
		characterRoutes := gated.Group("/characters")
		{
			characterRoutes.POST("", characterHandler.CreateCharacter)
			characterRoutes.GET("", characterHandler.ListCharacters)
			characterRoutes.GET("/:id", characterHandler.GetCharacter)
		}

		chatRoutes := gated.Group("/chat")
		{
			chatRoutes.POST("/sessions", chatHandler.StartSession)
			chatRoutes.GET("/sessions", chatHandler.ListSessions)
			chatRoutes.GET("/sessions/:id/messages", chatHandler.ListMessages)
			chatRoutes.POST("/sessions/:id/messages", chatHandler.SendMessage)
		}
	}

	// Prometheus scrape endpoint
	r.Engine.GET("/metrics", gin.WrapH(r.Container.Metrics.Handler()))
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Invite-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
