package middleware

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware builds the CORS policy from CORS_ALLOWED_ORIGINS
// (comma-separated). In production an empty allowlist denies all
// cross-origin callers; elsewhere all origins are allowed for developer
// convenience.
func CORSMiddleware() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		corsConfig.AllowCredentials = true
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("ENVIRONMENT")), "production") {
		// No allowlist in production denies every cross-origin caller.
		corsConfig.AllowOrigins = []string{"https://invalid.localhost"}
	} else {
		// Credentials cannot be combined with a wildcard origin.
		corsConfig.AllowAllOrigins = true
	}

	corsConfig.AddAllowMethods("GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")

	return cors.New(corsConfig)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
