package models

import "time"

// User represents a platform account that owns apps and subscriptions.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text;index"`                // Optional email, unique when set.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Apps []App `gorm:"foreignKey:UserID"` // Apps owned by this user.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
