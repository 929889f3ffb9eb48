package handlers

import (
	"time"

	intconfig "campusbus/internal/config"
	"campusbus/internal/http/middleware"
	"campusbus/internal/queue"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

var (
	jwtSecret  = []byte("super-secret-key-change-me")
	delayGrace = 15 * time.Minute
)

// Configure wires the handler package to the loaded environment. Must run
// before the router mounts any handler.
func Configure(env intconfig.Env) {
	jwtSecret = []byte(env.JWTSecret)
	delayGrace = env.DelayGrace
}

// JWTSecret exposes the signing key to the router for the auth middleware.
func JWTSecret() []byte {
	return jwtSecret
}

// Services are built per request so each carries the request id. Repositories
// are zero values: they fall back to the shared intconfig.DB.

func notificationService(c *gin.Context) services.NotificationService {
	return services.NotificationService{
		Cache:     intconfig.Redis,
		Publish:   queue.PublishNotificationCreated,
		RequestID: middleware.GetRequestID(c),
	}
}

func tripService(c *gin.Context) services.TripService {
	return services.TripService{
		Notifier:   notificationService(c),
		DelayGrace: delayGrace,
		RequestID:  middleware.GetRequestID(c),
	}
}

func attendanceService(c *gin.Context) services.AttendanceService {
	return services.AttendanceService{
		Notifier:  notificationService(c),
		RequestID: middleware.GetRequestID(c),
	}
}

func manifestService(c *gin.Context) services.ManifestService {
	return services.ManifestService{
		DelayGrace: delayGrace,
		RequestID:  middleware.GetRequestID(c),
	}
}
