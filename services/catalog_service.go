package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/gorm"
)

// CatalogService serves the read-only room/tier/promotion views of the
// catalog. Catalog writes happen in an external management system.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// ListRooms returns rooms ordered by number, optionally filtered by hotel.
func (s *CatalogService) ListRooms(hotelID uint) ([]models.Room, error) {
	q := s.DB.Order("room_number ASC")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// GetRoom returns a room together with the rate tiers active right now.
func (s *CatalogService) GetRoom(id uint) (*models.Room, []models.RateTier, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRoomNotFound
		}
		return nil, nil, fmt.Errorf("failed to load room %d: %w", id, err)
	}

	now := time.Now().UTC()
	var tiers []models.RateTier
	err := s.DB.
		Where("room_id = ? AND status = ?", id, models.TierStatusActive).
		Where("valid_from <= ?", now).
		Where("valid_to IS NULL OR valid_to >= ?", now).
		Order("mode ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rate tiers for room %d: %w", id, err)
	}
	return &room, tiers, nil
}

// ListPromotions returns promotions live at the given instant, optionally
// narrowed by hotel and room scope.
func (s *CatalogService) ListPromotions(hotelID, roomID uint, at time.Time) ([]models.Promotion, error) {
	q := s.DB.
		Where("status = ?", models.PromotionStatusActive).
		Where("valid_from <= ? AND valid_to >= ?", at, at).
		Order("id ASC")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	if roomID != 0 {
		q = q.Where("room_id IS NULL OR room_id = ?", roomID)
	}
	var promos []models.Promotion
	if err := q.Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promos, nil
}
