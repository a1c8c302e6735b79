package scheduler

import (
	"log"
	"time"

	"hotel-booking-engine/services"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the engine's background jobs. The only job today is the
// pending-hold expiry sweep: unpaid Pending bookings release their interval
// after holdTTL.
type Scheduler struct {
	cron     *cron.Cron
	bookings *services.BookingService
	holdTTL  time.Duration
}

func New(bookings *services.BookingService, holdTTL time.Duration) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC))
	s := &Scheduler{
		cron:     c,
		bookings: bookings,
		holdTTL:  holdTTL,
	}
	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	if s.holdTTL <= 0 {
		log.Println("booking hold expiry disabled (BOOKING_HOLD_TTL <= 0)")
		return
	}
	if _, err := s.cron.AddFunc("@every 1m", s.expirePendingHolds); err != nil {
		log.Printf("failed to register pending-hold expiry job: %v", err)
	}
}

func (s *Scheduler) expirePendingHolds() {
	released, err := s.bookings.ExpireStalePending(s.holdTTL)
	if err != nil {
		log.Printf("pending-hold expiry sweep failed: %v", err)
		return
	}
	if released > 0 {
		log.Printf("pending-hold expiry released %d booking(s)", released)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
