package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/gorm"
)

// Lifecycle transitions. Every transition locks the booking row first so a
// cancellation cannot race an in-flight confirmation for the same interval,
// then checks the transition table; an invalid move fails with
// InvalidTransitionError and leaves the row untouched.

// Confirm moves a Pending booking to Confirmed. The caller vouches for the
// external acknowledgement (staff action or gateway callback).
func (s *BookingService) Confirm(bookingID uint) (*models.Booking, error) {
	return s.transition(bookingID, models.BookingStatusConfirmed, nil)
}

// MarkPaid moves a Confirmed booking to Paid. It requires a Succeeded payment
// record for the booking.
func (s *BookingService) MarkPaid(bookingID uint) (*models.Booking, error) {
	guard := func(tx *gorm.DB, b *models.Booking) error {
		var count int64
		err := tx.Model(&models.Payment{}).
			Where("booking_id = ? AND status = ?", b.ID, models.PaymentStatusSucceeded).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check payments: %w", err)
		}
		if count == 0 {
			ve := newValidationError()
			ve.add("payment", "no succeeded payment recorded for this booking")
			return ve
		}
		return nil
	}
	return s.transition(bookingID, models.BookingStatusPaid, guard)
}

// Complete moves a Paid booking to Completed once its check-out time has
// passed.
func (s *BookingService) Complete(bookingID uint) (*models.Booking, error) {
	guard := func(tx *gorm.DB, b *models.Booking) error {
		if time.Now().UTC().Before(b.CheckOut) {
			ve := newValidationError()
			ve.add("checkOut", "booking cannot complete before its check-out time")
			return ve
		}
		return nil
	}
	return s.transition(bookingID, models.BookingStatusCompleted, guard)
}

// Cancel moves any non-terminal booking to Cancelled and releases its
// interval, making the room immediately bookable again.
func (s *BookingService) Cancel(bookingID uint) (*models.Booking, error) {
	return s.transition(bookingID, models.BookingStatusCancelled, nil)
}

type transitionGuard func(tx *gorm.DB, b *models.Booking) error

func (s *BookingService) transition(bookingID uint, target string, guard transitionGuard) (*models.Booking, error) {
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := lockForUpdate(tx).First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
		}

		if !models.CanTransition(b.Status, target) {
			return &InvalidTransitionError{From: b.Status, To: target}
		}

		if guard != nil {
			if err := guard(tx, &b); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": target}
		now := time.Now().UTC()
		switch target {
		case models.BookingStatusCancelled:
			// Take the same room lock the confirm path takes, so releasing
			// the interval serializes against in-flight confirmations.
			var room models.Room
			if err := lockForUpdate(tx).Select("id").First(&room, b.RoomID).Error; err != nil {
				return fmt.Errorf("failed to lock room %d: %w", b.RoomID, err)
			}
			// Clearing interval_key frees the (room_id, interval_key) slot
			// for the next booking.
			updates["interval_key"] = nil
			updates["cancelled_at"] = now
		case models.BookingStatusCompleted:
			updates["interval_key"] = nil
			updates["completed_at"] = now
		}

		if err := tx.Model(&b).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update booking %d: %w", bookingID, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.GetBooking(bookingID)
}

// AppendFee records an incidental charge against a non-terminal booking. It
// never changes the booking's prices.
func (s *BookingService) AppendFee(bookingID uint, feeType string, amount int64, note string) (*models.Fee, error) {
	if amount < 0 {
		ve := newValidationError()
		ve.add("amount", "fee amount must not be negative")
		return nil, ve
	}

	var fee models.Fee
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := lockForUpdate(tx).First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if models.IsTerminalStatus(b.Status) {
			return &InvalidTransitionError{From: b.Status, To: b.Status}
		}

		fee = models.Fee{
			BookingID:  bookingID,
			Type:       feeType,
			Amount:     amount,
			Note:       note,
			OccurredAt: time.Now().UTC(),
		}
		return tx.Create(&fee).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &fee, nil
}

// RecordPayment stores a payment outcome reported by the external gateway.
func (s *BookingService) RecordPayment(bookingID uint, method string, amount int64, status string) (*models.Payment, error) {
	ve := newValidationError()
	switch status {
	case models.PaymentStatusInitiated, models.PaymentStatusSucceeded, models.PaymentStatusFailed:
	default:
		ve.add("status", fmt.Sprintf("unknown payment status %q", status))
	}
	if amount < 0 {
		ve.add("amount", "payment amount must not be negative")
	}
	if ve.hasErrors() {
		return nil, ve
	}

	var payment models.Payment
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Select("id", "status").First(&b, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		payment = models.Payment{
			BookingID: bookingID,
			Method:    method,
			Amount:    amount,
			Status:    status,
		}
		return tx.Create(&payment).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &payment, nil
}

// ExpireStalePending cancels Pending bookings older than ttl and returns how
// many it released. A zero ttl disables the sweep.
func (s *BookingService) ExpireStalePending(ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-ttl)
	var stale []models.Booking
	err := s.DB.Select("id").
		Where("status = ? AND created_at < ?", models.BookingStatusPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}

	released := 0
	for _, b := range stale {
		if _, err := s.Cancel(b.ID); err != nil {
			// The booking may have just been confirmed or cancelled by hand;
			// skip it and let the next sweep reconsider.
			if AsInvalidTransition(err) != nil || errors.Is(err, ErrBookingNotFound) {
				continue
			}
			return released, err
		}
		released++
	}
	return released, nil
}
