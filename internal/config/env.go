package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	RedisAddr string
	AMQPURL   string

	JWTSecret string

	// DelayGrace is how long past departure a trip may sit with status
	// "scheduled" before it derives as delayed. Zero disables the trigger.
	DelayGrace time.Duration

	CORSAllowedOrigins []string
}

// LoadEnv reads configuration from the environment, loading .env first when
// present. Every knob has a usable default so the server starts bare.
func LoadEnv() Env {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	graceMin := 15
	if v := strings.TrimSpace(os.Getenv("DELAY_GRACE_MINUTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("invalid DELAY_GRACE_MINUTES %q, using default", v)
		} else {
			graceMin = n
		}
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Env{
		AppAddr:            getenv("APP_ADDR", ":8080"),
		GinMode:            strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBUser:             getenv("DB_USER", "root"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             getenv("DB_HOST", "127.0.0.1:3306"),
		DBName:             getenv("DB_NAME", "campus_bus"),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		AMQPURL:            strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		JWTSecret:          getenv("JWT_SECRET", "super-secret-key-change-me"),
		DelayGrace:         time.Duration(graceMin) * time.Minute,
		CORSAllowedOrigins: origins,
	}
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
