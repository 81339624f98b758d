package handlers

import (
	"net/http"

	"github.com/appdeck/appdeck/internal/authz"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/appdeck/appdeck/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionHandler manages subscription endpoints. Plan changes go
// through the ownership gate against the linked app's owner; list, create,
// and retrieve are open to any authenticated caller. There is no delete:
// subscriptions are kept for record keeping.
type SubscriptionHandler struct {
	subs *store.SubscriptionStore
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{subs: store.NewSubscriptionStore(db)}
}

// createSubscriptionRequest captures the payload for subscribing an app.
type createSubscriptionRequest struct {
	PlanID uint64 `json:"plan"`             // Plan to subscribe to.
	AppID  uint64 `json:"subscription_app"` // App being subscribed.
}

// Create subscribes an app to a plan on behalf of the acting user.
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var body createSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plan is required"})
		return
	}
	if body.AppID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription_app is required"})
		return
	}

	sub, errCreate := h.subs.Create(c.Request.Context(), getUserID(c), body.PlanID, body.AppID)
	if errCreate != nil {
		writeError(c, errCreate, "create subscription failed")
		return
	}
	c.JSON(http.StatusCreated, formatSubscription(sub))
}

// List returns all subscriptions.
func (h *SubscriptionHandler) List(c *gin.Context) {
	rows, errList := h.subs.List(c.Request.Context())
	if errList != nil {
		writeError(c, errList, "list subscriptions failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatSubscription(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

// Get fetches a subscription by ID.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	sub, errGet := h.subs.GetByID(c.Request.Context(), id)
	if errGet != nil {
		writeError(c, errGet, "query subscription failed")
		return
	}
	c.JSON(http.StatusOK, formatSubscription(sub))
}

// updateSubscriptionRequest captures the payload for a full plan update.
type updateSubscriptionRequest struct {
	PlanID uint64 `json:"plan"` // New plan.
}

// Update replaces the subscription's plan; owner of the linked app only.
func (h *SubscriptionHandler) Update(c *gin.Context) {
	h.changePlan(c, authz.OpUpdate, true)
}

// Patch changes the subscription's plan when supplied; owner of the linked
// app only.
func (h *SubscriptionHandler) Patch(c *gin.Context) {
	h.changePlan(c, authz.OpPartialUpdate, false)
}

// changePlan parses the plan-change payload and delegates to the store.
func (h *SubscriptionHandler) changePlan(c *gin.Context, op authz.Operation, planRequired bool) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	var body updateSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.PlanID == 0 {
		if planRequired {
			c.JSON(http.StatusBadRequest, gin.H{"error": "plan is required"})
			return
		}
		// Nothing to change; return current state after the ownership check.
		sub, errGet := h.subs.GetByID(c.Request.Context(), id)
		if errGet != nil {
			writeError(c, errGet, "query subscription failed")
			return
		}
		if errAuthz := authz.AuthorizeSubscription(getUserID(c), sub, op); errAuthz != nil {
			writeError(c, errAuthz, "update subscription failed")
			return
		}
		c.JSON(http.StatusOK, formatSubscription(sub))
		return
	}

	sub, errChange := h.subs.ChangePlan(c.Request.Context(), getUserID(c), id, body.PlanID, op)
	if errChange != nil {
		writeError(c, errChange, "update subscription failed")
		return
	}
	c.JSON(http.StatusOK, formatSubscription(sub))
}

// formatSubscription converts a subscription model into a response payload.
func formatSubscription(s *models.Subscription) gin.H {
	return gin.H{
		"id":               s.ID,
		"user":             s.UserID,
		"plan":             s.PlanID,
		"subscription_app": s.AppID,
		"active":           s.Active,
		"created_at":       s.CreatedAt,
		"updated_at":       s.UpdatedAt,
	}
}
