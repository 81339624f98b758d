package handlers

import (
	"net/http"
	"strings"

	"github.com/appdeck/appdeck/internal/authz"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/appdeck/appdeck/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppHandler manages app CRUD endpoints. Single-resource operations go
// through the ownership gate; list and create do not.
type AppHandler struct {
	apps *store.AppStore
}

// NewAppHandler constructs an AppHandler.
func NewAppHandler(db *gorm.DB) *AppHandler {
	return &AppHandler{apps: store.NewAppStore(db)}
}

// createAppRequest captures the payload for creating an app.
type createAppRequest struct {
	Name        string `json:"name"`        // Unique app name.
	Description string `json:"description"` // App description.
	AppType     string `json:"app_type"`    // Web or Mobile.
	Framework   string `json:"framework"`   // Django or React Native.
	DomainName  string `json:"domain_name"` // Optional custom domain.
	Screenshot  string `json:"screenshot"`  // Optional screenshot URI.
}

// validateAppFields checks field constraints shared by create and update.
func validateAppFields(fields store.AppFields) string {
	if fields.Name == "" {
		return "name is required"
	}
	if len(fields.Name) > 50 {
		return "name must be at most 50 characters"
	}
	if !fields.AppType.Valid() {
		return "app_type must be Web or Mobile"
	}
	if !fields.Framework.Valid() {
		return "framework must be Django or React Native"
	}
	if len(fields.DomainName) > 50 {
		return "domain_name must be at most 50 characters"
	}
	return ""
}

// Create registers a new app owned by the acting user.
func (h *AppHandler) Create(c *gin.Context) {
	var body createAppRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	fields := store.AppFields{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		AppType:     models.AppType(strings.TrimSpace(body.AppType)),
		Framework:   models.Framework(strings.TrimSpace(body.Framework)),
		DomainName:  strings.TrimSpace(body.DomainName),
		Screenshot:  strings.TrimSpace(body.Screenshot),
	}
	if msg := validateAppFields(fields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	app, errCreate := h.apps.Create(c.Request.Context(), getUserID(c), fields)
	if errCreate != nil {
		writeError(c, errCreate, "create app failed")
		return
	}
	c.JSON(http.StatusCreated, formatApp(app))
}

// List returns all apps, optionally filtered by name.
func (h *AppHandler) List(c *gin.Context) {
	nameQ := strings.TrimSpace(c.Query("name"))
	rows, errList := h.apps.List(c.Request.Context(), nameQ)
	if errList != nil {
		writeError(c, errList, "list apps failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatApp(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"apps": out})
}

// Get fetches a single app; only the owner may read it.
func (h *AppHandler) Get(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	app, errGet := h.apps.Retrieve(c.Request.Context(), getUserID(c), id)
	if errGet != nil {
		writeError(c, errGet, "query app failed")
		return
	}
	c.JSON(http.StatusOK, formatApp(app))
}

// Update replaces all mutable fields of an owned app.
func (h *AppHandler) Update(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	var body createAppRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	fields := store.AppFields{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		AppType:     models.AppType(strings.TrimSpace(body.AppType)),
		Framework:   models.Framework(strings.TrimSpace(body.Framework)),
		DomainName:  strings.TrimSpace(body.DomainName),
		Screenshot:  strings.TrimSpace(body.Screenshot),
	}
	if msg := validateAppFields(fields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	app, errUpdate := h.apps.Update(c.Request.Context(), getUserID(c), id, fields)
	if errUpdate != nil {
		writeError(c, errUpdate, "update app failed")
		return
	}
	c.JSON(http.StatusOK, formatApp(app))
}

// patchAppRequest captures optional fields for partial updates.
type patchAppRequest struct {
	Name        *string `json:"name"`        // Optional name update.
	Description *string `json:"description"` // Optional description update.
	AppType     *string `json:"app_type"`    // Optional app type update.
	Framework   *string `json:"framework"`   // Optional framework update.
	DomainName  *string `json:"domain_name"` // Optional domain update.
	Screenshot  *string `json:"screenshot"`  // Optional screenshot update.
}

// Patch applies supplied fields to an owned app.
func (h *AppHandler) Patch(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	var body patchAppRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	patch := store.AppPatch{
		Description: body.Description,
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		if len(name) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must be at most 50 characters"})
			return
		}
		patch.Name = &name
	}
	if body.AppType != nil {
		appType := models.AppType(strings.TrimSpace(*body.AppType))
		if !appType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "app_type must be Web or Mobile"})
			return
		}
		patch.AppType = &appType
	}
	if body.Framework != nil {
		framework := models.Framework(strings.TrimSpace(*body.Framework))
		if !framework.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "framework must be Django or React Native"})
			return
		}
		patch.Framework = &framework
	}
	if body.DomainName != nil {
		domain := strings.TrimSpace(*body.DomainName)
		if len(domain) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "domain_name must be at most 50 characters"})
			return
		}
		patch.DomainName = &domain
	}
	if body.Screenshot != nil {
		screenshot := strings.TrimSpace(*body.Screenshot)
		patch.Screenshot = &screenshot
	}

	app, errPatch := h.apps.Patch(c.Request.Context(), getUserID(c), id, patch)
	if errPatch != nil {
		writeError(c, errPatch, "update app failed")
		return
	}
	c.JSON(http.StatusOK, formatApp(app))
}

// Delete removes an owned app along with its subscriptions.
func (h *AppHandler) Delete(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	if errDelete := h.apps.Delete(c.Request.Context(), getUserID(c), id); errDelete != nil {
		writeError(c, errDelete, "delete app failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// formatApp converts an app model into a response payload.
func formatApp(a *models.App) gin.H {
	return gin.H{
		"id":                  a.ID,
		"name":                a.Name,
		"description":         a.Description,
		"app_type":            a.AppType,
		"framework":           a.Framework,
		"domain_name":         a.DomainName,
		"screenshot":          a.Screenshot,
		"user":                a.UserID,
		"app_subscription_id": a.AppSubscriptionID,
		"created_at":          a.CreatedAt,
		"updated_at":          a.UpdatedAt,
	}
}
