package store

import (
	"context"
	"fmt"

	"github.com/appdeck/appdeck/internal/models"
	"gorm.io/gorm"
)

// PlanStore reads the plan catalog. Plans are seeded at migration time and
// read-only over the API; Delete exists for the repository contract and is
// guarded so a referenced plan can never be removed.
type PlanStore struct {
	db *gorm.DB
}

// NewPlanStore constructs a PlanStore.
func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// List returns all plans ordered by price.
func (s *PlanStore) List(ctx context.Context) ([]models.Plan, error) {
	var rows []models.Plan
	if errFind := s.db.WithContext(ctx).Order("price ASC, created_at ASC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("store: list plans: %w", errFind)
	}
	return rows, nil
}

// GetByID loads a plan by ID.
func (s *PlanStore) GetByID(ctx context.Context, id uint64) (*models.Plan, error) {
	var plan models.Plan
	if errFind := s.db.WithContext(ctx).First(&plan, id).Error; errFind != nil {
		return nil, errFind
	}
	return &plan, nil
}

// Delete removes a plan unless any subscription still references it.
func (s *PlanStore) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.Plan
		if errFind := tx.First(&plan, id).Error; errFind != nil {
			return errFind
		}
		var refs int64
		if errCount := tx.Model(&models.Subscription{}).Where("plan_id = ?", plan.ID).Count(&refs).Error; errCount != nil {
			return fmt.Errorf("store: count plan subscriptions: %w", errCount)
		}
		if refs > 0 {
			return ErrPlanInUse
		}
		if errDelete := tx.Delete(&models.Plan{}, plan.ID).Error; errDelete != nil {
			return fmt.Errorf("store: delete plan: %w", errDelete)
		}
		return nil
	})
}
