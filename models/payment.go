package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentStatusInitiated = "Initiated"
	PaymentStatusSucceeded = "Succeeded"
	PaymentStatusFailed    = "Failed"
)

const (
	PaymentMethodCash     = "Cash"
	PaymentMethodCard     = "Card"
	PaymentMethodTransfer = "Transfer"
)

// Payment records the outcome of a payment attempt. Processing happens in an
// external gateway; the engine only stores what it is told.
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BookingID uint   `gorm:"index;column:booking_id" json:"bookingId"`
	Method    string `gorm:"size:32" json:"method"`
	Amount    int64  `gorm:"column:amount" json:"amount"`
	Status    string `gorm:"size:32;default:Initiated" json:"status"`
}
