package models

import "time"

// Subscription records which plan an app is subscribed to, on behalf of
// which user. Subscriptions are kept for record keeping and are never
// deleted over the API; deactivation is modeled by the Active flag.
type Subscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Subscribing user ID.
	User   User   `gorm:"foreignKey:UserID"` // Subscribing user record.

	PlanID uint64 `gorm:"not null;index"`                                // Subscribed plan ID.
	Plan   Plan   `gorm:"foreignKey:PlanID;constraint:OnDelete:RESTRICT"` // Subscribed plan, delete-protected.

	AppID uint64 `gorm:"not null;index"`                               // Subscribed app ID.
	App   App    `gorm:"foreignKey:AppID;constraint:OnDelete:CASCADE"` // Subscribed app, cascades on delete.

	Active bool `gorm:"not null;default:true;index"` // Whether the subscription is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
