package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DiscountPercent = "Percent"
	DiscountFixed   = "Fixed"
)

const (
	PromotionStatusActive   = "Active"
	PromotionStatusInactive = "Inactive"
)

// Promotion is a discount rule scoped to a hotel, optionally narrowed to a
// single room. Percent values are whole percentage points in (0,100]; fixed
// values are currency units > 0.
type Promotion struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HotelID uint   `gorm:"index;column:hotel_id" json:"hotelId"`
	RoomID  *uint  `gorm:"index;column:room_id" json:"roomId,omitempty"` // nil = hotel-wide
	Name    string `gorm:"size:255" json:"name"`

	DiscountKind  string `gorm:"size:16;column:discount_kind" json:"discountKind"`
	DiscountValue int64  `gorm:"column:discount_value" json:"discountValue"`

	ValidFrom time.Time `gorm:"column:valid_from" json:"validFrom"`
	ValidTo   time.Time `gorm:"column:valid_to" json:"validTo"`
	Status    string    `gorm:"size:16;default:Active" json:"status"`
}

// AppliesTo reports whether the promotion's scope matches the given hotel and
// room. A room-scoped promotion matches only its own room.
func (p *Promotion) AppliesTo(hotelID, roomID uint) bool {
	if p.HotelID != hotelID {
		return false
	}
	if p.RoomID != nil && *p.RoomID != roomID {
		return false
	}
	return true
}

// LiveAt reports whether the promotion is active and t falls inside its
// validity window (inclusive on both ends).
func (p *Promotion) LiveAt(t time.Time) bool {
	if p.Status != PromotionStatusActive {
		return false
	}
	return !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}
