package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdStatus is the lifecycle state of an ad.
type AdStatus string

const (
	// AdStatusPendingAdminApproval is assigned to free-package ads awaiting a
	// direct admin decision.
	AdStatusPendingAdminApproval AdStatus = "pending_admin_approval"
	// AdStatusPendingVerification is assigned to paid-package ads awaiting
	// payment submission and verification.
	AdStatusPendingVerification AdStatus = "pending_verification"
	// AdStatusApproved means the ad is publicly visible.
	AdStatusApproved AdStatus = "approved"
	// AdStatusRejected is terminal; the ad is visible only to its owner and admins.
	AdStatusRejected AdStatus = "rejected"
)

// Valid reports whether s is one of the defined ad statuses.
func (s AdStatus) Valid() bool {
	switch s {
	case AdStatusPendingAdminApproval, AdStatusPendingVerification, AdStatusApproved, AdStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further admin decision is allowed on s.
func (s AdStatus) Terminal() bool {
	return s == AdStatusRejected
}

// AdPackage is the pricing tier an ad was posted under.
type AdPackage string

const (
	AdPackageFree     AdPackage = "free"
	AdPackageStandard AdPackage = "standard"
	AdPackagePremium  AdPackage = "premium"
)

// Valid reports whether p is one of the defined package tiers.
func (p AdPackage) Valid() bool {
	switch p {
	case AdPackageFree, AdPackageStandard, AdPackagePremium:
		return true
	}
	return false
}

// InitialStatus derives the status a freshly created ad starts in. Free ads go
// straight to the admin queue; paid ads must clear payment verification first.
func (p AdPackage) InitialStatus() AdStatus {
	if p == AdPackageFree {
		return AdStatusPendingAdminApproval
	}
	return AdStatusPendingVerification
}

// Ad represents a classified listing posted by a seller. The owner never
// changes after creation; deletion is a soft delete via DeletedAt.
type Ad struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	Price           *float64   `json:"price,omitempty" db:"price"`
	ImageURLs       []string   `json:"image_urls" db:"image_urls"`
	VideoURL        *string    `json:"video_url,omitempty" db:"video_url"`
	CategoryID      uuid.UUID  `json:"category_id" db:"category_id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Package         AdPackage  `json:"package" db:"package"`
	Status          AdStatus   `json:"status" db:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time `json:"-" db:"deleted_at"`
}
