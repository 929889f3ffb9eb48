package api

import (
	"log"
	stdhttp "net/http"

	intconfig "campusbus/internal/config"
	h "campusbus/internal/http/handlers"
	"campusbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(h.JWTSecret())
	staff := middleware.RequireRoles("admin", "dispatcher")
	crew := middleware.RequireRoles("admin", "dispatcher", "driver", "supervisor")

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		authGroup := api.Group("/auth")
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)

		// Trips: listing runs the completion sweep, creation fans out
		// notifications, cancel is the explicit terminal transition.
		trips := api.Group("/trips", auth)
		trips.GET("", h.GetTrips)
		trips.POST("", staff, h.CreateTrip)
		trips.GET("/:id", h.GetTripByID)
		trips.PUT("/:id/cancel", staff, h.CancelTrip)
		trips.GET("/:id/manifest", crew, h.GetTripManifest)
		trips.GET("/:id/attendance", crew, h.GetTripAttendance)

		// Attendance log
		api.POST("/attendance", auth, crew, h.PostAttendance)

		// Bookings
		bookings := api.Group("/bookings", auth)
		bookings.GET("", h.GetBookings)
		bookings.PUT("/:id/absent", crew, h.MarkBookingAbsent)
		bookings.PUT("/:id/present", crew, h.MarkBookingPresent)

		// Notifications
		notifications := api.Group("/notifications", auth)
		notifications.POST("/broadcast", staff, h.BroadcastNotification)
		notifications.GET("", h.GetNotifications)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
		notifications.PUT("/:id/unread", h.MarkNotificationUnread)
		notifications.DELETE("/:id", h.DeleteNotification)

		// Users & reference data
		users := api.Group("/users", auth)
		users.GET("", h.GetUsers)
		users.GET("/:id", h.GetUserByID)
		users.GET("/:id/notifications/unread-count", h.GetUnreadCount)
		users.POST("/:id/notifications/mark-all-read", h.MarkAllNotificationsRead)

		api.GET("/routes", auth, h.GetRoutes)
		api.GET("/buses", auth, h.GetBuses)
	}

	return r
}
