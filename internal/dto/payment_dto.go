package dto

import (
	"time"

	"github.com/noah-isme/membership-portal-api/internal/models"
)

// PaymentUploadRequest captures a receipt submission. The receipt is either a file or a URL.
type PaymentUploadRequest struct {
	Type       string  `json:"type" form:"type" validate:"required,oneof=membership_fee camp_fee donation other"`
	Amount     float64 `json:"amount" form:"amount" validate:"required,gt=0"`
	ReceiptURL string  `json:"receipt_url" form:"receipt_url" validate:"omitempty,url,max=512"`
}

// PaymentVerifyRequest captures an administrator's verification decision.
type PaymentVerifyRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Reason string `json:"reason" validate:"required_if=Status rejected,max=2000"`
}

// PaymentListRequest filters payment listings.
type PaymentListRequest struct {
	Page     int
	PageSize int
	Status   string
	Type     string
	UserID   uint
}

// PaymentResponse serializes a payment.
type PaymentResponse struct {
	ID              uint       `json:"id"`
	UserID          uint       `json:"user_id"`
	Type            string     `json:"type"`
	Amount          float64    `json:"amount"`
	ReceiptURL      string     `json:"receipt_url"`
	Status          string     `json:"status"`
	VerifiedBy      *uint      `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewPaymentResponse converts a payment model into a DTO.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              payment.ID,
		UserID:          payment.UserID,
		Type:            payment.Type,
		Amount:          payment.Amount,
		ReceiptURL:      payment.ReceiptURL,
		Status:          payment.Status,
		VerifiedBy:      payment.VerifiedBy,
		VerifiedAt:      payment.VerifiedAt,
		RejectionReason: payment.RejectionReason,
		CreatedAt:       payment.CreatedAt,
	}
}

// PaymentListResponse wraps paginated payments.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}
