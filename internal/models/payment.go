package models

import "time"

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Payment types accepted on upload.
const (
	PaymentTypeMembershipFee = "membership_fee"
	PaymentTypeCampFee       = "camp_fee"
	PaymentTypeDonation      = "donation"
	PaymentTypeOther         = "other"
)

// Payment is a manually verified receipt submitted by an ambassador or president.
type Payment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	Type            string     `gorm:"size:32;index;not null" json:"type"`
	Amount          float64    `gorm:"not null" json:"amount"`
	ReceiptURL      string     `gorm:"size:512;not null" json:"receipt_url"`
	Status          string     `gorm:"size:32;index;not null" json:"status"`
	VerifiedBy      *uint      `json:"verified_by"`
	VerifiedAt      *time.Time `json:"verified_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	User            User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
