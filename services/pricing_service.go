package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/gorm"
)

// PricingService computes base prices from the rate table. All money is in
// integral currency units and duration math is done in integer seconds, so
// there is no floating-point rounding anywhere in a price.
type PricingService struct {
	DB *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db}
}

// ActiveTier returns the single active rate tier for (roomID, mode) whose
// validity window contains at. Overlapping active tiers for the same mode are
// a data error and are reported rather than silently picked from.
func (s *PricingService) ActiveTier(roomID uint, mode string, at time.Time) (*models.RateTier, error) {
	return s.activeTierTx(s.DB, roomID, mode, at)
}

func (s *PricingService) activeTierTx(tx *gorm.DB, roomID uint, mode string, at time.Time) (*models.RateTier, error) {
	var tiers []models.RateTier
	err := tx.
		Where("room_id = ? AND mode = ? AND status = ?", roomID, mode, models.TierStatusActive).
		Where("valid_from <= ?", at).
		Where("valid_to IS NULL OR valid_to >= ?", at).
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rate tiers for room %d: %w", roomID, err)
	}

	switch len(tiers) {
	case 0:
		return nil, ErrNoActiveRate
	case 1:
		return &tiers[0], nil
	default:
		return nil, fmt.Errorf("room %d has %d active %s tiers at %s: %w",
			roomID, len(tiers), mode, at.Format(time.RFC3339), ErrNoActiveRate)
	}
}

// CalculateBasePrice prices [checkIn, checkOut) for roomID in the given mode.
// It returns the amount and the tier the price came from.
func (s *PricingService) CalculateBasePrice(roomID uint, mode string, checkIn, checkOut time.Time) (int64, uint, error) {
	return s.calculateBasePriceTx(s.DB, roomID, mode, checkIn, checkOut)
}

func (s *PricingService) calculateBasePriceTx(tx *gorm.DB, roomID uint, mode string, checkIn, checkOut time.Time) (int64, uint, error) {
	if !checkIn.Before(checkOut) {
		return 0, 0, ErrInvalidInterval
	}

	var room models.Room
	if err := tx.Select("id").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrRoomNotFound
		}
		return 0, 0, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	tier, err := s.activeTierTx(tx, roomID, mode, checkIn)
	if err != nil {
		return 0, 0, err
	}

	seconds := int64(checkOut.Sub(checkIn) / time.Second)

	var amount int64
	switch mode {
	case models.ModeHourly:
		hours := ceilDiv(seconds, 3600)
		firstBlock := int64(tier.FirstBlockHours)
		if firstBlock <= 0 {
			firstBlock = 1
		}
		amount = tier.FirstBlockPrice
		if hours > firstBlock {
			amount += tier.ExtraUnitPrice * (hours - firstBlock)
		}
	case models.ModeOvernight:
		// Flat rate for the night window; the mode choice is the caller's.
		amount = tier.FirstBlockPrice
	case models.ModeDaily:
		days := ceilDiv(seconds, 24*3600)
		if days < 1 {
			days = 1
		}
		amount = tier.FirstBlockPrice * days
	default:
		ve := newValidationError()
		ve.add("mode", fmt.Sprintf("unknown booking mode %q", mode))
		return 0, 0, ve
	}

	return amount, tier.ID, nil
}

func ceilDiv(n, d int64) int64 {
	return (n + d - 1) / d
}
