package services

import (
	"log"

	"hotel-booking-engine/models"
)

// Notifier receives the fire-and-forget "booking confirmed" event. Delivery
// failures are logged and never roll back a committed booking.
type Notifier interface {
	BookingConfirmed(b *models.Booking) error
}

// LogNotifier is the default Notifier; real deployments swap in a mail or
// queue implementation.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) BookingConfirmed(b *models.Booking) error {
	log.Printf("booking confirmed: ref=%s room=%d guest=%d %s -> %s base=%d discount=%d final=%d",
		b.ReferenceCode, b.RoomID, b.GuestID,
		b.CheckIn.Format("2006-01-02 15:04"), b.CheckOut.Format("2006-01-02 15:04"),
		b.BasePrice, b.DiscountAmount, b.FinalPrice)
	return nil
}
