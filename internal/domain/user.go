package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what a user is allowed to do on the marketplace.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// SellerStatus tracks the admin review state of a seller account.
type SellerStatus string

const (
	SellerPending  SellerStatus = "pending"
	SellerApproved SellerStatus = "approved"
	SellerRejected SellerStatus = "rejected"
)

// User represents a marketplace account (buyer, seller or admin)
type User struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	Username         string       `json:"username" db:"username"`
	Email            string       `json:"email" db:"email"`
	PasswordHash     string       `json:"-" db:"password_hash"`
	Role             Role         `json:"role" db:"role"`
	Status           SellerStatus `json:"status" db:"status"`
	Name             string       `json:"name" db:"name"`
	BusinessName     string       `json:"businessName,omitempty" db:"business_name"`
	ContactInfo      string       `json:"contactInfo,omitempty" db:"contact_info"`
	PaymentInfo      string       `json:"paymentInfo,omitempty" db:"payment_info"`
	ProfilePhoto     string       `json:"profilePhoto,omitempty" db:"profile_photo"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time    `json:"updatedAt" db:"updated_at"`
}

// PasswordResetToken is a single-use token mailed to a user who forgot
// their password.
type PasswordResetToken struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

// SellerInfo is the public slice of a seller profile that gets denormalized
// onto product and order views.
type SellerInfo struct {
	BusinessName string `json:"businessName"`
	ContactInfo  string `json:"contactInfo"`
	PaymentInfo  string `json:"paymentInfo"`
}

// PublicInfo returns the seller fields safe to show alongside listings.
func (u *User) PublicInfo() SellerInfo {
	return SellerInfo{
		BusinessName: u.BusinessName,
		ContactInfo:  u.ContactInfo,
		PaymentInfo:  u.PaymentInfo,
	}
}

// Actor is the authenticated identity passed into every service operation.
// Services do their own capability checks against it instead of relying on
// a middleware chain.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
