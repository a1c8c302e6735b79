package models

import (
	"gorm.io/gorm"
)

// Room status values. Rooms are managed by the catalog side; the booking
// engine only reads them.
const (
	RoomStatusAvailable   = "Available"
	RoomStatusMaintenance = "Maintenance"
	RoomStatusLocked      = "Locked"
)

type Room struct {
	gorm.Model

	HotelID    uint   `json:"hotelId" gorm:"index;column:hotel_id"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`

	Status       string `json:"status" gorm:"size:32;default:Available"`
	Floor        string `json:"floor" gorm:"type:varchar(10)"`
	DisplayPrice int64  `json:"displayPrice" gorm:"column:display_price"`
	Capacity     int    `json:"capacity" gorm:"column:capacity;default:2"`
	Description  string `json:"description" gorm:"type:text"`

	Hotel Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
}
