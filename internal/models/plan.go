package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan represents a billing tier apps can subscribe to. Plans are billed
// monthly and form a read-only catalog seeded at migration time.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string          `gorm:"type:varchar(20);not null;uniqueIndex"` // Plan name.
	Description string          `gorm:"type:varchar(255)"`                     // Plan description.
	Price       decimal.Decimal `gorm:"type:decimal(21,8);not null;default:0"` // Monthly price.
	Features    datatypes.JSON  `gorm:"type:jsonb;not null;default:'[]'"`      // Feature description list.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
