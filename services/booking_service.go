package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hotel-booking-engine/models"
	"hotel-booking-engine/utils"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// confirmAttempts bounds the retry loop around the confirm transaction.
// Losing a contention round is an expected outcome, not a fault.
const confirmAttempts = 3

// priceTolerance is the allowed gap between a client-supplied expected total
// and the computed final price, in currency units.
const priceTolerance = int64(1)

// BookingService is the transactional entry point of the engine. It owns the
// Booking rows: after creation they change only through lifecycle transitions.
type BookingService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
	Pricing      *PricingService
	Promotions   *PromotionService
	Notifier     Notifier
}

func NewBookingService(db *gorm.DB, availability *AvailabilityService, pricing *PricingService, promotions *PromotionService, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &BookingService{
		DB:           db,
		Availability: availability,
		Pricing:      pricing,
		Promotions:   promotions,
		Notifier:     notifier,
	}
}

// FeeInput is an upfront charge persisted together with the booking.
type FeeInput struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// ConfirmBookingInput carries everything a confirm attempt needs.
type ConfirmBookingInput struct {
	RoomID         uint       `json:"roomId"`
	GuestID        uint       `json:"guestId"`
	Mode           string     `json:"mode"`
	CheckIn        time.Time  `json:"checkIn"`
	CheckOut       time.Time  `json:"checkOut"`
	Adults         int        `json:"adults"`
	Children       int        `json:"children"`
	PromotionID    *uint      `json:"promotionId,omitempty"`
	ExpectedTotal  *int64     `json:"expectedTotal,omitempty"`
	Fees           []FeeInput `json:"fees,omitempty"`
	PaymentMethod  string     `json:"paymentMethod,omitempty"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
}

func (in *ConfirmBookingInput) validate(room *models.Room) error {
	ve := newValidationError()

	if !in.CheckIn.Before(in.CheckOut) {
		ve.add("checkIn", "check-in must be before check-out")
	}
	switch in.Mode {
	case models.ModeHourly, models.ModeOvernight, models.ModeDaily:
	default:
		ve.add("mode", fmt.Sprintf("unknown booking mode %q", in.Mode))
	}
	if in.GuestID == 0 {
		ve.add("guestId", "provide guestId")
	}
	if in.Adults < 1 {
		ve.add("adults", "at least one adult is required")
	}
	if in.Children < 0 {
		ve.add("children", "children must not be negative")
	}
	if room.Capacity > 0 && in.Adults+in.Children > room.Capacity {
		ve.add("adults", fmt.Sprintf("occupancy %d exceeds room capacity %d", in.Adults+in.Children, room.Capacity))
	}
	if room.Status != models.RoomStatusAvailable {
		ve.add("roomId", fmt.Sprintf("room is %s", strings.ToLower(room.Status)))
	}
	for i, fee := range in.Fees {
		if fee.Amount < 0 {
			ve.add(fmt.Sprintf("fees[%d].amount", i), "fee amount must not be negative")
		}
	}

	if ve.hasErrors() {
		return ve
	}
	return nil
}

// ConfirmBooking runs the whole pre-check-through-commit sequence: validate,
// re-check availability under the commit lock, price, apply promotion, and
// persist booking + fees + initial payment atomically. Contention rounds are
// retried up to confirmAttempts times before ErrRoomUnavailable surfaces.
func (s *BookingService) ConfirmBooking(in ConfirmBookingInput) (*models.Booking, error) {
	in.CheckIn = in.CheckIn.UTC()
	in.CheckOut = in.CheckOut.UTC()

	// Idempotent replay: an earlier request with the same key already holds
	// the booking.
	if in.IdempotencyKey != "" {
		if existing, err := s.findByIdempotencyKey(in.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < confirmAttempts; attempt++ {
		booking, err := s.tryConfirm(in)
		if err == nil {
			s.notifyConfirmed(booking)
			return booking, nil
		}

		if errors.Is(err, ErrRoomUnavailable) {
			lastErr = err
			// Another writer may have just committed this exact request.
			if in.IdempotencyKey != "" {
				if existing, lookupErr := s.findByIdempotencyKey(in.IdempotencyKey); lookupErr == nil && existing != nil {
					return existing, nil
				}
			}
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *BookingService) tryConfirm(in ConfirmBookingInput) (*models.Booking, error) {
	var booking models.Booking

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		// Serialize confirm attempts per room: the room row is the lock
		// object, so the availability re-check and the insert happen under
		// one owner.
		var room models.Room
		if err := lockForUpdate(tx).First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room %d: %w", in.RoomID, err)
		}

		if err := in.validate(&room); err != nil {
			return err
		}

		free, err := s.Availability.isAvailableTx(tx, in.RoomID, in.CheckIn, in.CheckOut, 0)
		if err != nil {
			return err
		}
		if !free {
			return ErrRoomUnavailable
		}

		basePrice, tierID, err := s.Pricing.calculateBasePriceTx(tx, in.RoomID, in.Mode, in.CheckIn, in.CheckOut)
		if err != nil {
			return err
		}

		discount, finalPrice, err := s.Promotions.applyTx(tx, basePrice, in.PromotionID, room.HotelID, in.RoomID, in.CheckIn)
		if err != nil {
			return err
		}

		// Stale client quote protection.
		if in.ExpectedTotal != nil {
			diff := finalPrice - *in.ExpectedTotal
			if diff < -priceTolerance || diff > priceTolerance {
				return ErrPriceMismatch
			}
		}

		digest, _ := json.Marshal(in)
		intervalKey := models.MakeIntervalKey(in.CheckIn, in.CheckOut)

		booking = models.Booking{
			ReferenceCode:  utils.NewReferenceCode(),
			RoomID:         in.RoomID,
			GuestID:        in.GuestID,
			Mode:           in.Mode,
			CheckIn:        in.CheckIn,
			CheckOut:       in.CheckOut,
			Adults:         in.Adults,
			Children:       in.Children,
			PromotionID:    in.PromotionID,
			RateTierID:     tierID,
			BasePrice:      basePrice,
			DiscountAmount: discount,
			FinalPrice:     finalPrice,
			Status:         models.BookingStatusPending,
			RequestDigest:  datatypes.JSON(digest),
			IntervalKey:    &intervalKey,
		}
		if in.IdempotencyKey != "" {
			key := in.IdempotencyKey
			booking.IdempotencyKey = &key
		}

		if err := tx.Create(&booking).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return ErrRoomUnavailable
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		for _, fee := range in.Fees {
			row := models.Fee{
				BookingID:  booking.ID,
				Type:       fee.Type,
				Amount:     fee.Amount,
				Note:       fee.Note,
				OccurredAt: time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create fee: %w", err)
			}
		}

		method := in.PaymentMethod
		if method == "" {
			method = models.PaymentMethodCash
		}
		payment := models.Payment{
			BookingID: booking.ID,
			Method:    method,
			Amount:    finalPrice,
			Status:    models.PaymentStatusInitiated,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.GetBooking(booking.ID)
}

func (s *BookingService) findByIdempotencyKey(key string) (*models.Booking, error) {
	var existing models.Booking
	err := s.DB.Preload("Fees").Preload("Payments").
		Where("idempotency_key = ?", key).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
}

// notifyConfirmed fires the downstream notification without ever affecting
// the committed booking.
func (s *BookingService) notifyConfirmed(b *models.Booking) {
	snapshot := *b
	go func() {
		if err := s.Notifier.BookingConfirmed(&snapshot); err != nil {
			log.Printf("warning: booking %s notification failed: %v", snapshot.ReferenceCode, err)
		}
	}()
}

// GetBooking loads a booking with its fees and payments.
func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.DB.Preload("Fees").Preload("Payments").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &b, nil
}

// GetBookingByReference loads a booking by its reference code.
func (s *BookingService) GetBookingByReference(ref string) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.Preload("Fees").Preload("Payments").
		Where("reference_code = ?", ref).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", ref, err)
	}
	return &b, nil
}

// ListBookings returns bookings newest-first, optionally filtered by room.
func (s *BookingService) ListBookings(roomID uint) ([]models.Booking, error) {
	q := s.DB.Preload("Fees").Preload("Payments").Order("created_at DESC")
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

// lockForUpdate applies SELECT ... FOR UPDATE on backends that support it.
// SQLite serializes writers on its own, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}
