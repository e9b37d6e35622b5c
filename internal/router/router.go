package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/handler"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Subject      *handler.SubjectHandler
	Resource     *handler.ResourceHandler
	Setting      *handler.SettingHandler
	Notification *handler.NotificationHandler
	Conversation *handler.ConversationHandler
	Assistant    *handler.AssistantHandler
	Admin        *handler.AdminHandler
	Analytics    *handler.AnalyticsHandler
	Activity     *handler.ActivityHandler
	Media        *handler.MediaHandler
	Push         *handler.PushHandler
	Broadcast    *handler.BroadcastHandler
	Stream       *handler.StreamHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve locally stored uploads statically with aggressive caching (1 year).
	// Only used when object storage is not configured.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: login endpoints are brute-force targets and the chatbot
	// fronts metered upstream providers.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	chatLimiter := middleware.NewRateLimiter(20, time.Minute)

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1")
	{
		publicAPI.GET("/subjects", handlers.Subject.List)
		publicAPI.GET("/subjects/:id/resources", handlers.Resource.ListBySubject)
		publicAPI.GET("/settings", handlers.Setting.Get)
		publicAPI.GET("/notifications", handlers.Notification.List)

		publicAPI.POST("/session", authLimiter.Middleware(), handlers.Auth.CreateSession)
		publicAPI.POST("/chatbot", chatLimiter.Middleware(), handlers.Assistant.Chat)
	}

	// ─── 2. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", authLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.Me)
	}

	// ─── 3. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService))
	{
		userAPI.GET("/me/conversation", handlers.Conversation.MyThread)
		userAPI.POST("/me/conversation/messages", handlers.Conversation.SendMine)
		userAPI.POST("/me/conversation/seen", handlers.Conversation.MarkMineSeen)

		userAPI.POST("/messages/:id/reactions", handlers.Conversation.React)
		userAPI.DELETE("/messages/:id", handlers.Conversation.Delete)
		userAPI.POST("/messages/:id/status", handlers.Conversation.AdvanceStatus)

		userAPI.POST("/push/tokens", handlers.Push.RegisterToken)
	}

	// ─── 4. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/live", handlers.Stream.Live)
	}

	// ─── 5. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Dashboard and activity log are open to every admin.
		adminAPI.GET("/dashboard", handlers.Analytics.Dashboard)
		adminAPI.GET("/activity", handlers.Activity.List)
		adminAPI.DELETE("/activity", handlers.Activity.Clear)

		// Support inbox is open to every admin.
		adminAPI.GET("/conversations", handlers.Conversation.Inbox)
		adminAPI.GET("/conversations/:user_id/messages", handlers.Conversation.Thread)
		adminAPI.POST("/conversations/:user_id/messages", handlers.Conversation.Send)
		adminAPI.POST("/conversations/:user_id/seen", handlers.Conversation.MarkSeen)

		// Subject catalog
		subjectsGroup := adminAPI.Group("/subjects")
		subjectsGroup.Use(middleware.RequirePermission(string(model.PermissionSubjectsWrite)))
		{
			subjectsGroup.POST("", handlers.Subject.Create)
			subjectsGroup.PUT("/:id", handlers.Subject.Update)
			subjectsGroup.POST("/:id/swap", handlers.Subject.Swap)
			subjectsGroup.DELETE("/:id", handlers.Subject.Delete)
		}

		// Resources and media upload
		resourcesGroup := adminAPI.Group("/resources")
		resourcesGroup.Use(middleware.RequirePermission(string(model.PermissionResourcesUpload)))
		{
			resourcesGroup.GET("", handlers.Resource.ListAll)
			resourcesGroup.POST("", handlers.Resource.Create)
			resourcesGroup.PUT("/:id", handlers.Resource.Update)
			resourcesGroup.DELETE("/:id", handlers.Resource.Delete)
		}
		adminAPI.POST("/media",
			middleware.RequirePermission(string(model.PermissionResourcesUpload)),
			handlers.Media.Upload,
		)

		// Announcement settings
		adminAPI.PUT("/settings",
			middleware.RequirePermission(string(model.PermissionAnnouncementsManage)),
			handlers.Setting.Update,
		)

		// Outbound messaging
		adminAPI.POST("/push",
			middleware.RequirePermission(string(model.PermissionPushSend)),
			handlers.Push.Send,
		)
		adminAPI.POST("/broadcast/email",
			middleware.RequirePermission(string(model.PermissionEmailBroadcast)),
			handlers.Broadcast.SendEmail,
		)

		// Admin directory (super admin only)
		adminsGroup := adminAPI.Group("/admins")
		adminsGroup.Use(middleware.RequireSuperAdmin())
		{
			adminsGroup.GET("", handlers.Admin.List)
			adminsGroup.POST("", handlers.Admin.Create)
			adminsGroup.PUT("/:id", handlers.Admin.Update)
			adminsGroup.DELETE("/:id", handlers.Admin.Delete)
		}
	}

	return router
}
