package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/appdeck/appdeck/internal/config"
	dbutil "github.com/appdeck/appdeck/internal/db"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/appdeck/appdeck/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// signupRequest defines the request body for account creation.
type signupRequest struct {
	Username string `json:"username"` // Login name.
	Name     string `json:"name"`     // Display name.
	Email    string `json:"email"`    // Email address.
	Password string `json:"password"` // Plaintext password.
}

// Signup creates a user account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if len(password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Username:  username,
		Name:      strings.TrimSpace(body.Name),
		Email:     strings.TrimSpace(body.Email),
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(h.db, errCreate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, formatUser(&user))
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"` // Login name.
	Password string `json:"password"` // Plaintext password.
}

// Login verifies credentials and returns a signed token with the user.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query user failed"})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errToken := security.IssueUserToken(h.jwtCfg.Secret, user.ID, user.Username, h.jwtCfg.Expiry)
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  formatUser(&user),
	})
}

// formatUser converts a user model into a response payload.
func formatUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
