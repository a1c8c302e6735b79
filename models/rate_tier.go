package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking modes. A rate tier prices exactly one mode for one room.
const (
	ModeHourly    = "Hourly"
	ModeOvernight = "Overnight"
	ModeDaily     = "Daily"
)

const (
	TierStatusActive   = "Active"
	TierStatusInactive = "Inactive"
)

// RateTier is a priced rule for a (room, mode) pair valid over a time window.
// Invariant: for a given room and mode at most one tier may be active at any
// instant; overlapping active windows are a data error the pricing service
// reports as such.
type RateTier struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RoomID uint   `gorm:"index;column:room_id" json:"roomId"`
	Mode   string `gorm:"size:16;column:mode;index:idx_rate_tiers_room_mode,priority:2" json:"mode"`

	// FirstBlockPrice covers the first block: the first FirstBlockHours hours
	// in hourly mode, one night in overnight mode, one 24h period in daily
	// mode. ExtraUnitPrice applies per additional whole hour (hourly only).
	FirstBlockPrice int64 `gorm:"column:first_block_price" json:"firstBlockPrice"`
	FirstBlockHours int   `gorm:"column:first_block_hours;default:2" json:"firstBlockHours"`
	ExtraUnitPrice  int64 `gorm:"column:extra_unit_price" json:"extraUnitPrice"`

	ValidFrom time.Time  `gorm:"column:valid_from" json:"validFrom"`
	ValidTo   *time.Time `gorm:"column:valid_to" json:"validTo,omitempty"` // nil = open-ended
	Status    string     `gorm:"size:16;default:Active" json:"status"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"-"`
}

// CoversInstant reports whether the tier's validity window contains t.
func (rt *RateTier) CoversInstant(t time.Time) bool {
	if t.Before(rt.ValidFrom) {
		return false
	}
	if rt.ValidTo != nil && t.After(*rt.ValidTo) {
		return false
	}
	return true
}
