package services_test

import (
	"fmt"
	"sync"
	"testing"

	"hotel-booking-engine/models"
	"hotel-booking-engine/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmInput(env *testEnv) services.ConfirmBookingInput {
	return services.ConfirmBookingInput{
		RoomID:   env.room.ID,
		GuestID:  7,
		Mode:     models.ModeHourly,
		CheckIn:  at(10, 0),
		CheckOut: at(15, 0),
		Adults:   2,
	}
}

func TestConfirmBooking_HappyPathWithPromotion(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)
	promo := env.seedPromotion(t, models.DiscountPercent, 10)

	in := confirmInput(env)
	in.PromotionID = &promo.ID

	booking, err := env.bookings.ConfirmBooking(in)
	require.NoError(t, err)

	// 5 hours: 200000 + 3*100000, minus 10%.
	assert.Equal(t, int64(500000), booking.BasePrice)
	assert.Equal(t, int64(50000), booking.DiscountAmount)
	assert.Equal(t, int64(450000), booking.FinalPrice)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.NotEmpty(t, booking.ReferenceCode)
	require.Len(t, booking.Payments, 1)
	assert.Equal(t, models.PaymentStatusInitiated, booking.Payments[0].Status)
	assert.Equal(t, int64(450000), booking.Payments[0].Amount)
}

func TestConfirmBooking_UpfrontFeesPersisted(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	in := confirmInput(env)
	in.Fees = []services.FeeInput{{Type: "ExtraBed", Amount: 50000, Note: "one extra bed"}}

	booking, err := env.bookings.ConfirmBooking(in)
	require.NoError(t, err)
	require.Len(t, booking.Fees, 1)
	assert.Equal(t, int64(50000), booking.Fees[0].Amount)
	// Fees never fold into the booking price.
	assert.Equal(t, int64(500000), booking.FinalPrice)
}

func TestConfirmBooking_OverlapRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	_, err := env.bookings.ConfirmBooking(confirmInput(env))
	require.NoError(t, err)

	// Overlaps hours 3-4 of the first booking.
	second := confirmInput(env)
	second.CheckIn = at(12, 0)
	second.CheckOut = at(14, 0)
	_, err = env.bookings.ConfirmBooking(second)
	assert.ErrorIs(t, err, services.ErrRoomUnavailable)
}

func TestConfirmBooking_Idempotency(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	in := confirmInput(env)
	in.IdempotencyKey = "client-key-1"

	first, err := env.bookings.ConfirmBooking(in)
	require.NoError(t, err)

	second, err := env.bookings.ConfirmBooking(in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReferenceCode, second.ReferenceCode)

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBooking_PriceMismatch(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	stale := int64(400000) // computed price is 500000
	in := confirmInput(env)
	in.ExpectedTotal = &stale

	_, err := env.bookings.ConfirmBooking(in)
	assert.ErrorIs(t, err, services.ErrPriceMismatch)

	exact := int64(500000)
	in.ExpectedTotal = &exact
	_, err = env.bookings.ConfirmBooking(in)
	assert.NoError(t, err)
}

func TestConfirmBooking_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	cases := []struct {
		name   string
		mutate func(*services.ConfirmBookingInput)
	}{
		{"inverted interval", func(in *services.ConfirmBookingInput) { in.CheckIn, in.CheckOut = in.CheckOut, in.CheckIn }},
		{"unknown mode", func(in *services.ConfirmBookingInput) { in.Mode = "Weekly" }},
		{"no adults", func(in *services.ConfirmBookingInput) { in.Adults = 0 }},
		{"negative children", func(in *services.ConfirmBookingInput) { in.Children = -1 }},
		{"over capacity", func(in *services.ConfirmBookingInput) { in.Adults = 3; in.Children = 1 }},
		{"missing guest", func(in *services.ConfirmBookingInput) { in.GuestID = 0 }},
		{"negative fee", func(in *services.ConfirmBookingInput) { in.Fees = []services.FeeInput{{Type: "x", Amount: -1}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := confirmInput(env)
			tc.mutate(&in)
			_, err := env.bookings.ConfirmBooking(in)
			require.Error(t, err)
			assert.NotNil(t, services.AsValidationError(err), "expected ValidationError, got %v", err)
		})
	}
}

func TestConfirmBooking_RoomUnderMaintenance(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)
	require.NoError(t, env.db.Model(&env.room).Update("status", models.RoomStatusMaintenance).Error)

	_, err := env.bookings.ConfirmBooking(confirmInput(env))
	require.Error(t, err)
	assert.NotNil(t, services.AsValidationError(err))
}

func TestConfirmBooking_RoomNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	in := confirmInput(env)
	in.RoomID = 9999
	_, err := env.bookings.ConfirmBooking(in)
	assert.ErrorIs(t, err, services.ErrRoomNotFound)
}

// Exactly one of N racing confirms for overlapping intervals may win; the
// rest must come back as RoomUnavailable.
func TestConfirmBooking_ConcurrentOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := confirmInput(env)
			in.GuestID = uint(i + 1)
			in.IdempotencyKey = fmt.Sprintf("racer-%d", i)
			_, errs[i] = env.bookings.ConfirmBooking(in)
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, services.ErrRoomUnavailable)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).
		Where("status IN ?", models.LiveBookingStatuses).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmBooking_CancelledBookingFreesInterval(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	first, err := env.bookings.ConfirmBooking(confirmInput(env))
	require.NoError(t, err)
	_, err = env.bookings.Confirm(first.ID)
	require.NoError(t, err)

	// Identical interval is blocked while the booking is live...
	_, err = env.bookings.ConfirmBooking(confirmInput(env))
	require.ErrorIs(t, err, services.ErrRoomUnavailable)

	// ...and opens up the moment it is cancelled.
	_, err = env.bookings.Cancel(first.ID)
	require.NoError(t, err)

	replacement, err := env.bookings.ConfirmBooking(confirmInput(env))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, replacement.ID)
}
