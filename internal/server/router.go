// Package server assembles the HTTP router from services and middleware.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "condomanager/internal/docs" // Import swagger docs
	"condomanager/internal/handlers"
	"condomanager/internal/middleware"
	"condomanager/internal/models"
	"condomanager/internal/services"
	"condomanager/internal/session"
	"condomanager/internal/storage"
)

// Deps holds everything the router needs.
type Deps struct {
	UserService         services.UserServicer
	CondominiumService  services.CondominiumServicer
	ExpenseService      services.ExpenseServicer
	NotificationService services.NotificationServicer
	ReportService       services.ReportServicer
	AuditService        services.AuditServicer
	Revoker             session.Revoker

	CORSAllowedOrigins []string
	ServiceAPIKey      string
	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func() error
}

// NewRouter builds the gin engine with every API route.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.UserService, d.Revoker, d.AuditService)
	userHandler := handlers.NewUserHandler(d.UserService, d.AuditService)
	condominiumHandler := handlers.NewCondominiumHandler(d.CondominiumService, d.AuditService)
	expenseHandler := handlers.NewExpenseHandler(d.ExpenseService, d.AuditService)
	notificationHandler := handlers.NewNotificationHandler(d.NotificationService, d.AuditService)
	reportHandler := handlers.NewReportHandler(d.ReportService, d.AuditService)

	router := gin.New()
	// Attachments above this are spooled to disk by the multipart reader.
	router.MaxMultipartMemory = storage.MaxFileSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(d.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Service-to-service routes
	serviceAPI := v1.Group("/internal")
	serviceAPI.Use(middleware.ServiceKeyMiddleware(d.ServiceAPIKey))
	serviceAPI.POST("/notifications/broadcast", notificationHandler.Broadcast)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.UserService, d.Revoker))
	admin := middleware.RequireRole(models.RoleAdmin)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/password", authHandler.ChangePassword)

	// User routes
	users := protected.Group("/users", admin)
	users.POST("", userHandler.CreateUser)
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PATCH("/:id", userHandler.UpdateUser)
	users.PUT("/:id/role", userHandler.ChangeRole)
	users.DELETE("/:id", userHandler.DeleteUser)

	// Condominium routes
	condominiums := protected.Group("/condominiums")
	condominiums.GET("", condominiumHandler.ListCondominiums)
	condominiums.GET("/:id", condominiumHandler.GetCondominium)
	condominiums.GET("/:id/summary", condominiumHandler.GetSummary)
	condominiums.GET("/:id/report", reportHandler.DownloadReport)
	condominiums.POST("", admin, condominiumHandler.CreateCondominium)
	condominiums.PUT("/:id", admin, condominiumHandler.UpdateCondominium)
	condominiums.DELETE("/:id", admin, condominiumHandler.DeleteCondominium)
	condominiums.GET("/:id/managers", admin, condominiumHandler.ListManagers)
	condominiums.POST("/:id/managers", admin, condominiumHandler.AssignManager)
	condominiums.DELETE("/:id/managers/:user_id", admin, condominiumHandler.RemoveManager)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/:id/approve", expenseHandler.ApproveExpense)
	expenses.POST("/:id/reject", expenseHandler.RejectExpense)
	expenses.GET("/:id/attachments/:file_id", expenseHandler.DownloadAttachment)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.ListMyNotifications)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	adminNotifications := protected.Group("/admin/notifications", admin)
	adminNotifications.GET("", notificationHandler.ListAllNotifications)
	adminNotifications.POST("", notificationHandler.CreateNotification)

	return router
}
