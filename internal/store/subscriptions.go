package store

import (
	"context"
	"fmt"
	"time"

	"github.com/appdeck/appdeck/internal/authz"
	dbutil "github.com/appdeck/appdeck/internal/db"
	"github.com/appdeck/appdeck/internal/models"
	"gorm.io/gorm"
)

// SubscriptionStore persists subscription records. Creation maintains both
// sides of the app/subscription one-to-one link in a single transaction.
// Subscriptions are never deleted here; the Active flag exists for
// record-keeping but no code path flips it.
type SubscriptionStore struct {
	db *gorm.DB
}

// NewSubscriptionStore constructs a SubscriptionStore.
func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Create subscribes an app to a plan on behalf of userID. The new row and
// the app's back-reference are written in one transaction.
func (s *SubscriptionStore) Create(ctx context.Context, userID, planID, appID uint64) (*models.Subscription, error) {
	var sub models.Subscription
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.Plan
		if errPlan := tx.First(&plan, planID).Error; errPlan != nil {
			return errPlan
		}
		var app models.App
		if errApp := tx.First(&app, appID).Error; errApp != nil {
			return errApp
		}

		now := time.Now().UTC()
		sub = models.Subscription{
			UserID:    userID,
			PlanID:    plan.ID,
			AppID:     app.ID,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errCreate := tx.Create(&sub).Error; errCreate != nil {
			if dbutil.IsUniqueViolation(s.db, errCreate) {
				return ErrDuplicate
			}
			return fmt.Errorf("store: create subscription: %w", errCreate)
		}
		if errLink := tx.Model(&app).Updates(map[string]any{
			"app_subscription_id": sub.ID,
			"updated_at":          now,
		}).Error; errLink != nil {
			return fmt.Errorf("store: link app subscription: %w", errLink)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return s.GetByID(ctx, sub.ID)
}

// List returns all subscriptions with their plan and app loaded.
func (s *SubscriptionStore) List(ctx context.Context) ([]models.Subscription, error) {
	var rows []models.Subscription
	if errFind := s.db.WithContext(ctx).
		Preload("Plan").Preload("App").
		Order("created_at DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("store: list subscriptions: %w", errFind)
	}
	return rows, nil
}

// GetByID loads a subscription with its plan and app.
func (s *SubscriptionStore) GetByID(ctx context.Context, id uint64) (*models.Subscription, error) {
	var sub models.Subscription
	if errFind := s.db.WithContext(ctx).
		Preload("Plan").Preload("App").
		First(&sub, id).Error; errFind != nil {
		return nil, errFind
	}
	return &sub, nil
}

// ChangePlan moves the subscription to another plan after authorizing the
// actor against the linked app's owner. Read, authorize, and write share
// one transaction.
func (s *SubscriptionStore) ChangePlan(ctx context.Context, actorID, id, planID uint64, op authz.Operation) (*models.Subscription, error) {
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if errFind := tx.Preload("App").First(&sub, id).Error; errFind != nil {
			return errFind
		}
		if errAuthz := authz.AuthorizeSubscription(actorID, &sub, op); errAuthz != nil {
			return errAuthz
		}
		var plan models.Plan
		if errPlan := tx.First(&plan, planID).Error; errPlan != nil {
			return errPlan
		}
		if errUpdate := tx.Model(&sub).Updates(map[string]any{
			"plan_id":    plan.ID,
			"updated_at": time.Now().UTC(),
		}).Error; errUpdate != nil {
			return fmt.Errorf("store: change subscription plan: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return s.GetByID(ctx, id)
}
