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

// AppStore persists app records and enforces the ownership gate on
// single-resource operations. Gated writes run read-authorize-write inside
// one transaction, so a concurrent ownership change cannot slip between
// the check and the mutation.
type AppStore struct {
	db *gorm.DB
}

// NewAppStore constructs an AppStore.
func NewAppStore(db *gorm.DB) *AppStore {
	return &AppStore{db: db}
}

// AppFields carries the full set of mutable app fields.
type AppFields struct {
	Name        string           // Unique app name.
	Description string           // App description.
	AppType     models.AppType   // Web or Mobile.
	Framework   models.Framework // Django or React Native.
	DomainName  string           // Optional custom domain.
	Screenshot  string           // Optional screenshot URI.
}

// AppPatch carries optional app field updates; nil fields are untouched.
type AppPatch struct {
	Name        *string           // Optional name update.
	Description *string           // Optional description update.
	AppType     *models.AppType   // Optional app type update.
	Framework   *models.Framework // Optional framework update.
	DomainName  *string           // Optional domain update.
	Screenshot  *string           // Optional screenshot update.
}

// Create inserts an app owned by ownerID.
func (s *AppStore) Create(ctx context.Context, ownerID uint64, fields AppFields) (*models.App, error) {
	now := time.Now().UTC()
	app := models.App{
		Name:        fields.Name,
		Description: fields.Description,
		AppType:     fields.AppType,
		Framework:   fields.Framework,
		DomainName:  fields.DomainName,
		Screenshot:  fields.Screenshot,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&app).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(s.db, errCreate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("store: create app: %w", errCreate)
	}
	return &app, nil
}

// List returns all apps, optionally filtered by a case-insensitive name match.
func (s *AppStore) List(ctx context.Context, nameFilter string) ([]models.App, error) {
	q := s.db.WithContext(ctx).Model(&models.App{})
	if nameFilter != "" {
		pattern := dbutil.NormalizeLikePattern(s.db, "%"+nameFilter+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(s.db, "name"), pattern)
	}
	var rows []models.App
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("store: list apps: %w", errFind)
	}
	return rows, nil
}

// Retrieve loads an app by ID and authorizes the read against actorID.
func (s *AppStore) Retrieve(ctx context.Context, actorID, id uint64) (*models.App, error) {
	var app models.App
	if errFind := s.db.WithContext(ctx).Preload("AppSubscription").First(&app, id).Error; errFind != nil {
		return nil, errFind
	}
	if errAuthz := authz.AuthorizeApp(actorID, &app, authz.OpRetrieve); errAuthz != nil {
		return nil, errAuthz
	}
	return &app, nil
}

// Update replaces all mutable fields of the app after the ownership check.
func (s *AppStore) Update(ctx context.Context, actorID, id uint64, fields AppFields) (*models.App, error) {
	var app models.App
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&app, id).Error; errFind != nil {
			return errFind
		}
		if errAuthz := authz.AuthorizeApp(actorID, &app, authz.OpUpdate); errAuthz != nil {
			return errAuthz
		}
		updates := map[string]any{
			"name":        fields.Name,
			"description": fields.Description,
			"app_type":    fields.AppType,
			"framework":   fields.Framework,
			"domain_name": fields.DomainName,
			"screenshot":  fields.Screenshot,
			"updated_at":  time.Now().UTC(),
		}
		if errUpdate := tx.Model(&app).Updates(updates).Error; errUpdate != nil {
			if dbutil.IsUniqueViolation(s.db, errUpdate) {
				return ErrDuplicate
			}
			return fmt.Errorf("store: update app: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &app, nil
}

// Patch applies the supplied fields to the app after the ownership check.
func (s *AppStore) Patch(ctx context.Context, actorID, id uint64, patch AppPatch) (*models.App, error) {
	var app models.App
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.First(&app, id).Error; errFind != nil {
			return errFind
		}
		if errAuthz := authz.AuthorizeApp(actorID, &app, authz.OpPartialUpdate); errAuthz != nil {
			return errAuthz
		}

		updates := map[string]any{"updated_at": time.Now().UTC()}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.AppType != nil {
			updates["app_type"] = *patch.AppType
		}
		if patch.Framework != nil {
			updates["framework"] = *patch.Framework
		}
		if patch.DomainName != nil {
			updates["domain_name"] = *patch.DomainName
		}
		if patch.Screenshot != nil {
			updates["screenshot"] = *patch.Screenshot
		}

		if errUpdate := tx.Model(&app).Updates(updates).Error; errUpdate != nil {
			if dbutil.IsUniqueViolation(s.db, errUpdate) {
				return ErrDuplicate
			}
			return fmt.Errorf("store: patch app: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return &app, nil
}

// Delete removes the app after the ownership check. Linked subscriptions
// are deleted in the same transaction, keeping cascade semantics identical
// across dialects regardless of foreign-key enforcement.
func (s *AppStore) Delete(ctx context.Context, actorID, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.App
		if errFind := tx.First(&app, id).Error; errFind != nil {
			return errFind
		}
		if errAuthz := authz.AuthorizeApp(actorID, &app, authz.OpDestroy); errAuthz != nil {
			return errAuthz
		}
		// Clear the back-reference first so the subscription rows are free
		// to go.
		if errClear := tx.Model(&app).Update("app_subscription_id", nil).Error; errClear != nil {
			return fmt.Errorf("store: clear app subscription link: %w", errClear)
		}
		if errSubs := tx.Where("app_id = ?", app.ID).Delete(&models.Subscription{}).Error; errSubs != nil {
			return fmt.Errorf("store: delete app subscriptions: %w", errSubs)
		}
		if errDelete := tx.Delete(&models.App{}, app.ID).Error; errDelete != nil {
			return fmt.Errorf("store: delete app: %w", errDelete)
		}
		return nil
	})
}
