package models

import "time"

type UserRole string

const (
	// platform personnel
	RolePlatformAdmin   UserRole = "platform_admin"
	RolePlatformSupport UserRole = "platform_support"

	// merchant staff
	RoleOwner   UserRole = "owner"
	RoleManager UserRole = "manager"
	RoleServer  UserRole = "server"
	RoleKitchen UserRole = "kitchen"
)

// IsPlatform reports whether the role belongs to internal staff with cross-merchant access.
func (r UserRole) IsPlatform() bool {
	return r == RolePlatformAdmin || r == RolePlatformSupport
}

func (r UserRole) IsMerchantRole() bool {
	switch r {
	case RoleOwner, RoleManager, RoleServer, RoleKitchen:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MerchantID   *uint     `gorm:"index" json:"merchant_id"`
	Merchant     *Merchant `json:"-"`
	LocationID   *uint     `json:"location_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Invitation struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MerchantID uint       `gorm:"index;not null" json:"merchant_id"`
	Merchant   *Merchant  `json:"-"`
	LocationID *uint      `json:"location_id"`
	Email      string     `gorm:"size:100;not null" json:"email"`
	Role       UserRole   `gorm:"size:20;not null" json:"role"`
	Token      string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	InvitedBy  uint       `gorm:"not null" json:"invited_by"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
