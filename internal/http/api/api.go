// Package api wires the HTTP routes and authentication middleware.
package api

import (
	"net/http"
	"strings"

	"github.com/appdeck/appdeck/internal/config"
	"github.com/appdeck/appdeck/internal/http/api/handlers"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/appdeck/appdeck/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers all API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	v1 := r.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	v1.POST("/signup/", authHandler.Signup)
	v1.POST("/login/", authHandler.Login)

	planHandler := handlers.NewPlanHandler(db)
	v1.GET("/plans/", planHandler.List)
	v1.GET("/plans/:id", planHandler.Get)

	authed := v1.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg))

	// List and create are open to any authenticated caller; only
	// single-resource operations go through the ownership gate.
	appHandler := handlers.NewAppHandler(db)
	authed.GET("/apps/", appHandler.List)
	authed.POST("/apps/", appHandler.Create)
	authed.GET("/apps/:id", appHandler.Get)
	authed.PUT("/apps/:id", appHandler.Update)
	authed.PATCH("/apps/:id", appHandler.Patch)
	authed.DELETE("/apps/:id", appHandler.Delete)
	// A mutating verb with no id is a distinct failure, caught before any
	// lookup.
	authed.PUT("/apps/", handlers.MissingID)
	authed.PATCH("/apps/", handlers.MissingID)
	authed.DELETE("/apps/", handlers.MissingID)

	subscriptionHandler := handlers.NewSubscriptionHandler(db)
	authed.GET("/subscriptions/", subscriptionHandler.List)
	authed.POST("/subscriptions/", subscriptionHandler.Create)
	authed.GET("/subscriptions/:id", subscriptionHandler.Get)
	authed.PUT("/subscriptions/:id", subscriptionHandler.Update)
	authed.PATCH("/subscriptions/:id", subscriptionHandler.Patch)
	authed.PUT("/subscriptions/", handlers.MissingID)
	authed.PATCH("/subscriptions/", handlers.MissingID)
}

// userAuthMiddleware validates user JWTs and loads the acting user.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}
