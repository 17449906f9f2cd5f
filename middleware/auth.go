package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"procurement-receipt-api/models"
	"procurement-receipt-api/services"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and places the authenticated
// actor in the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.UserID == 0 || !models.ValidRole(claims.Role) {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Set("name", claims.Name)

		c.Next()
	}
}

// RequireRole restricts a route to the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": gin.H{
			"kind":    string(services.KindForbidden),
			"message": "Insufficient permissions",
		}})
		c.Abort()
	}
}

// ActorFromContext rebuilds the authenticated actor set by AuthMiddleware.
func ActorFromContext(c *gin.Context) services.Actor {
	return services.Actor{
		ID:    c.GetInt("userID"),
		Role:  c.GetString("role"),
		Email: c.GetString("email"),
		Name:  c.GetString("name"),
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
		"kind":    string(services.KindUnauthorized),
		"message": msg,
	}})
	c.Abort()
}
