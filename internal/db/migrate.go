package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appdeck/appdeck/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate runs database migrations and seeds the plan catalog.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.App{},
		&models.Subscription{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// ddl defines an index or DDL statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			// domain_name is optional; uniqueness only applies to non-empty values.
			name: "idx_apps_domain_name_set",
			sql: `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_apps_domain_name_set
				ON apps (domain_name)
				WHERE domain_name <> ''
			`,
		},
		{
			// email is optional at signup; uniqueness only applies to non-empty values.
			name: "idx_users_email_set",
			sql: `
				CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_set
				ON users (email)
				WHERE email <> ''
			`,
		},
		{
			name: "idx_subscriptions_app_id_active",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_subscriptions_app_id_active
				ON subscriptions (app_id, active)
			`,
		},
		{
			name: "idx_subscriptions_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id_created_at
				ON subscriptions (user_id, created_at DESC)
			`,
		},
		{
			name: "idx_apps_user_id_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_apps_user_id_created_at
				ON apps (user_id, created_at DESC)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// seedPlan describes one catalog entry created at migration time.
type seedPlan struct {
	name        string
	description string
	price       decimal.Decimal
	features    []string
}

// defaultPlans is the plan catalog. Plans have no create/update path over
// the API, so this seed is the only writer.
var defaultPlans = []seedPlan{
	{
		name:        "Free",
		description: "Free Plan with $0 cost.",
		price:       decimal.Zero,
		features:    []string{"1 app", "Community support"},
	},
	{
		name:        "Basic",
		description: "Basic Plan for small projects.",
		price:       decimal.RequireFromString("9.99"),
		features:    []string{"5 apps", "Custom domain", "Email support"},
	},
	{
		name:        "Pro",
		description: "Pro Plan for production workloads.",
		price:       decimal.RequireFromString("29.99"),
		features:    []string{"Unlimited apps", "Custom domain", "Priority support"},
	},
}

// ensureDefaultPlans seeds the plan catalog, skipping plans that already exist.
func ensureDefaultPlans(conn *gorm.DB) error {
	for _, seed := range defaultPlans {
		var existing models.Plan
		errFind := conn.Where("name = ?", seed.name).First(&existing).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: query plan %s: %w", seed.name, errFind)
		}

		rawFeatures, errMarshal := json.Marshal(seed.features)
		if errMarshal != nil {
			return fmt.Errorf("db: marshal plan features %s: %w", seed.name, errMarshal)
		}

		now := time.Now().UTC()
		plan := models.Plan{
			Name:        seed.name,
			Description: seed.description,
			Price:       seed.price,
			Features:    datatypes.JSON(rawFeatures),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if errCreate := conn.Create(&plan).Error; errCreate != nil {
			return fmt.Errorf("db: seed plan %s: %w", seed.name, errCreate)
		}
	}
	return nil
}
