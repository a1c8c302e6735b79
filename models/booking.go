package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Booking lifecycle states. Completed and Cancelled are terminal.
const (
	BookingStatusPending   = "Pending"
	BookingStatusConfirmed = "Confirmed"
	BookingStatusPaid      = "Paid"
	BookingStatusCompleted = "Completed"
	BookingStatusCancelled = "Cancelled"
)

// LiveBookingStatuses are the states that hold a room interval; bookings in
// any other state are invisible to availability checks.
var LiveBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusPaid,
}

// bookingTransitions is the allowed-transition table. Anything not listed is
// invalid and must leave the booking unchanged.
var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:      {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a booking status admits no further
// transitions.
func IsTerminalStatus(status string) bool {
	return status == BookingStatusCompleted || status == BookingStatusCancelled
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`
	RoomID        uint   `gorm:"column:room_id;index;uniqueIndex:idx_bookings_room_interval,priority:1" json:"roomId"`
	GuestID       uint   `gorm:"column:guest_id;index" json:"guestId"`

	Mode     string    `gorm:"size:16;column:mode" json:"mode"`
	CheckIn  time.Time `gorm:"column:check_in;index" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"check_out"`

	Adults   int `gorm:"column:adults;default:1" json:"adults"`
	Children int `gorm:"column:children;default:0" json:"children"`

	PromotionID    *uint `gorm:"column:promotion_id;index" json:"promotionId,omitempty"`
	RateTierID     uint  `gorm:"column:rate_tier_id" json:"rateTierId"`
	BasePrice      int64 `gorm:"column:base_price" json:"basePrice"`
	DiscountAmount int64 `gorm:"column:discount_amount" json:"discountAmount"`
	FinalPrice     int64 `gorm:"column:final_price" json:"finalPrice"`

	Status string `gorm:"column:status;size:32;index" json:"status"`

	// IdempotencyKey dedupes retried confirm requests; RequestDigest keeps the
	// payload the key was first seen with.
	IdempotencyKey *string        `gorm:"column:idempotency_key;size:128;uniqueIndex" json:"-"`
	RequestDigest  datatypes.JSON `gorm:"column:request_digest" json:"-"`

	// IntervalKey is set while the booking holds its interval and cleared on
	// cancellation. The (room_id, interval_key) unique index is the storage
	// backstop for the no-overlap invariant.
	IntervalKey *string `gorm:"column:interval_key;size:64;uniqueIndex:idx_bookings_room_interval,priority:2" json:"-"`

	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	Room      Room      `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Promotion Promotion `gorm:"foreignKey:PromotionID;references:ID" json:"promotion,omitempty"`
	Fees      []Fee     `gorm:"foreignKey:BookingID" json:"fees"`
	Payments  []Payment `gorm:"foreignKey:BookingID" json:"payments"`
}

// MakeIntervalKey builds the interval-uniqueness key for a booking window.
func MakeIntervalKey(checkIn, checkOut time.Time) string {
	return fmt.Sprintf("%d-%d", checkIn.UTC().Unix(), checkOut.UTC().Unix())
}
