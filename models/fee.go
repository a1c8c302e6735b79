package models

import (
	"time"

	"gorm.io/gorm"
)

// Fee is an incidental charge appended to a booking after creation. Fees never
// retroactively change the booking's basePrice or finalPrice.
type Fee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BookingID  uint      `gorm:"index;column:booking_id" json:"bookingId"`
	Type       string    `gorm:"size:64" json:"type"`
	Amount     int64     `gorm:"column:amount" json:"amount"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	OccurredAt time.Time `gorm:"column:occurred_at" json:"occurredAt"`
}
