package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/gorm"
)

// AvailabilityService answers whether a room is free over a half-open
// [checkIn, checkOut) interval. It deliberately runs against whatever *gorm.DB
// it is handed so the orchestrator can re-run the same check inside its commit
// transaction.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// IsAvailable reports whether roomID is free for [checkIn, checkOut).
// excludeBookingID, when non-zero, lets a reschedule ignore its own row.
func (s *AvailabilityService) IsAvailable(roomID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, error) {
	return s.isAvailableTx(s.DB, roomID, checkIn, checkOut, excludeBookingID)
}

func (s *AvailabilityService) isAvailableTx(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, ErrInvalidInterval
	}

	var room models.Room
	if err := tx.Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrRoomNotFound
		}
		return false, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	// Half-open overlap: existing.check_in < requested.check_out AND
	// requested.check_in < existing.check_out. Cancelled and completed
	// bookings no longer hold the interval.
	q := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.LiveBookingStatuses).
		Where("check_in < ? AND ? < check_out", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count == 0, nil
}
