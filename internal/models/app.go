package models

import "time"

// AppType classifies an app as a web or mobile project.
type AppType string

// AppType values form a closed set; anything else is rejected at the
// validation boundary.
const (
	// AppTypeWeb marks a web project.
	AppTypeWeb AppType = "Web"
	// AppTypeMobile marks a mobile project.
	AppTypeMobile AppType = "Mobile"
)

// Valid reports whether the app type is a known value.
func (t AppType) Valid() bool {
	switch t {
	case AppTypeWeb, AppTypeMobile:
		return true
	}
	return false
}

// Framework identifies the framework an app is built on.
type Framework string

// Framework values form a closed set.
const (
	// FrameworkDjango marks a Django project.
	FrameworkDjango Framework = "Django"
	// FrameworkReactNative marks a React Native project.
	FrameworkReactNative Framework = "React Native"
)

// Valid reports whether the framework is a known value.
func (f Framework) Valid() bool {
	switch f {
	case FrameworkDjango, FrameworkReactNative:
		return true
	}
	return false
}

// App represents a project a user has registered on the platform, with
// display metadata and an optional link to its active subscription.
type App struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex"` // Unique app name.
	Description string    `gorm:"type:varchar(255)"`                     // App description.
	AppType     AppType   `gorm:"type:varchar(255);not null;index"`      // Web or Mobile.
	Framework   Framework `gorm:"type:varchar(255);not null;index"`      // Django or React Native.
	DomainName  string    `gorm:"type:varchar(50);index"`                // Optional custom domain, unique when set.
	Screenshot  string    `gorm:"type:varchar(255)"`                     // Optional screenshot URI.

	UserID uint64 `gorm:"not null;index"`    // Owning user ID.
	User   User   `gorm:"foreignKey:UserID"` // Owning user record.

	// AppSubscriptionID points back at the subscription whose AppID is
	// this app. Both sides are maintained in one transaction by the store.
	AppSubscriptionID *uint64       `gorm:"uniqueIndex"`                  // Active subscription ID.
	AppSubscription   *Subscription `gorm:"foreignKey:AppSubscriptionID"` // Active subscription record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
