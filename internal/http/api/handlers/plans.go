package handlers

import (
	"net/http"

	"github.com/appdeck/appdeck/internal/authz"
	"github.com/appdeck/appdeck/internal/models"
	"github.com/appdeck/appdeck/internal/store"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PlanHandler serves the read-only plan catalog.
type PlanHandler struct {
	plans *store.PlanStore
}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{plans: store.NewPlanStore(db)}
}

// List returns all plans.
func (h *PlanHandler) List(c *gin.Context) {
	rows, errList := h.plans.List(c.Request.Context())
	if errList != nil {
		writeError(c, errList, "list plans failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatPlan(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errID := authz.RequireID(c.Param("id"))
	if errID != nil {
		writeError(c, errID, "invalid id")
		return
	}
	plan, errGet := h.plans.GetByID(c.Request.Context(), id)
	if errGet != nil {
		writeError(c, errGet, "query plan failed")
		return
	}
	c.JSON(http.StatusOK, formatPlan(plan))
}

// formatPlan converts a plan model into a response payload.
func formatPlan(p *models.Plan) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"features":    p.Features,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
