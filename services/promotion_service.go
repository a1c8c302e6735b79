package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/gorm"
)

// PromotionService validates promotion eligibility and computes discounts.
type PromotionService struct {
	DB *gorm.DB
}

func NewPromotionService(db *gorm.DB) *PromotionService {
	return &PromotionService{DB: db}
}

// Apply computes (discountAmount, finalPrice) for basePrice under the given
// promotion. A nil promotionID means no discount. finalPrice never goes below
// zero.
func (s *PromotionService) Apply(basePrice int64, promotionID *uint, hotelID, roomID uint, at time.Time) (int64, int64, error) {
	return s.applyTx(s.DB, basePrice, promotionID, hotelID, roomID, at)
}

func (s *PromotionService) applyTx(tx *gorm.DB, basePrice int64, promotionID *uint, hotelID, roomID uint, at time.Time) (int64, int64, error) {
	if promotionID == nil {
		return 0, basePrice, nil
	}

	var promo models.Promotion
	if err := tx.First(&promo, *promotionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrPromotionNotFound
		}
		return 0, 0, fmt.Errorf("failed to load promotion %d: %w", *promotionID, err)
	}

	if !promo.AppliesTo(hotelID, roomID) {
		return 0, 0, ErrPromotionNotApplicable
	}
	if !promo.LiveAt(at) {
		return 0, 0, ErrPromotionExpired
	}

	discount := DiscountAmount(&promo, basePrice)
	return discount, basePrice - discount, nil
}

// DiscountAmount computes the discount a promotion takes off basePrice:
// percent discounts floor, fixed discounts clamp to basePrice.
func DiscountAmount(p *models.Promotion, basePrice int64) int64 {
	switch p.DiscountKind {
	case models.DiscountPercent:
		return basePrice * p.DiscountValue / 100
	case models.DiscountFixed:
		if p.DiscountValue > basePrice {
			return basePrice
		}
		return p.DiscountValue
	default:
		return 0
	}
}
