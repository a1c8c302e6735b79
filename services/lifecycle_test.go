package services_test

import (
	"testing"
	"time"

	"hotel-booking-engine/models"
	"hotel-booking-engine/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) confirmPending(t *testing.T) *models.Booking {
	t.Helper()
	env.seedHourlyTier(t)
	booking, err := env.bookings.ConfirmBooking(confirmInput(env))
	require.NoError(t, err)
	return booking
}

func TestLifecycle_HappyChain(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	b, err := env.bookings.Confirm(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	_, err = env.bookings.RecordPayment(booking.ID, models.PaymentMethodCard, b.FinalPrice, models.PaymentStatusSucceeded)
	require.NoError(t, err)

	b, err = env.bookings.MarkPaid(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaid, b.Status)

	// Force an old check-out so Complete's guard passes regardless of when
	// the test runs.
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.Booking{}).Where("id = ?", booking.ID).Update("check_out", past).Error)

	b, err = env.bookings.Complete(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, b.Status)
	assert.NotNil(t, b.CompletedAt)
}

func TestLifecycle_InvalidTransitionsLeaveStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	// Pending cannot jump straight to Paid or Completed.
	_, err := env.bookings.MarkPaid(booking.ID)
	require.Error(t, err)
	assert.NotNil(t, services.AsInvalidTransition(err))

	_, err = env.bookings.Complete(booking.ID)
	require.Error(t, err)
	assert.NotNil(t, services.AsInvalidTransition(err))

	b, err := env.bookings.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
}

func TestLifecycle_TerminalStatesAreFinal(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	_, err := env.bookings.Cancel(booking.ID)
	require.NoError(t, err)

	for _, attempt := range []func(uint) (*models.Booking, error){
		env.bookings.Confirm, env.bookings.MarkPaid, env.bookings.Complete, env.bookings.Cancel,
	} {
		_, err := attempt(booking.ID)
		require.Error(t, err)
		assert.NotNil(t, services.AsInvalidTransition(err))
	}
}

func TestLifecycle_MarkPaidRequiresSucceededPayment(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	_, err := env.bookings.Confirm(booking.ID)
	require.NoError(t, err)

	// Only an Initiated payment exists so far.
	_, err = env.bookings.MarkPaid(booking.ID)
	require.Error(t, err)
	assert.NotNil(t, services.AsValidationError(err))

	_, err = env.bookings.RecordPayment(booking.ID, models.PaymentMethodTransfer, booking.FinalPrice, models.PaymentStatusSucceeded)
	require.NoError(t, err)

	b, err := env.bookings.MarkPaid(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaid, b.Status)
}

func TestLifecycle_CompleteRequiresCheckOutPassed(t *testing.T) {
	env := newTestEnv(t)
	env.seedHourlyTier(t)

	in := confirmInput(env)
	in.CheckIn = time.Now().UTC().Add(time.Hour)
	in.CheckOut = time.Now().UTC().Add(3 * time.Hour)
	booking, err := env.bookings.ConfirmBooking(in)
	require.NoError(t, err)

	_, err = env.bookings.Confirm(booking.ID)
	require.NoError(t, err)
	_, err = env.bookings.RecordPayment(booking.ID, models.PaymentMethodCard, booking.FinalPrice, models.PaymentStatusSucceeded)
	require.NoError(t, err)
	_, err = env.bookings.MarkPaid(booking.ID)
	require.NoError(t, err)

	_, err = env.bookings.Complete(booking.ID)
	require.Error(t, err)
	assert.NotNil(t, services.AsValidationError(err))

	b, err := env.bookings.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaid, b.Status)
}

func TestLifecycle_CancelFromEveryLiveState(t *testing.T) {
	states := []struct {
		name    string
		prepare func(t *testing.T, env *testEnv, id uint)
	}{
		{"Pending", func(t *testing.T, env *testEnv, id uint) {}},
		{"Confirmed", func(t *testing.T, env *testEnv, id uint) {
			_, err := env.bookings.Confirm(id)
			require.NoError(t, err)
		}},
		{"Paid", func(t *testing.T, env *testEnv, id uint) {
			_, err := env.bookings.Confirm(id)
			require.NoError(t, err)
			_, err = env.bookings.RecordPayment(id, models.PaymentMethodCard, 1, models.PaymentStatusSucceeded)
			require.NoError(t, err)
			_, err = env.bookings.MarkPaid(id)
			require.NoError(t, err)
		}},
	}
	for _, tc := range states {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			booking := env.confirmPending(t)
			tc.prepare(t, env, booking.ID)

			b, err := env.bookings.Cancel(booking.ID)
			require.NoError(t, err)
			assert.Equal(t, models.BookingStatusCancelled, b.Status)
			assert.NotNil(t, b.CancelledAt)
			assert.Nil(t, b.IntervalKey)
		})
	}
}

func TestAppendFee(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	fee, err := env.bookings.AppendFee(booking.ID, "Minibar", 35000, "two sodas")
	require.NoError(t, err)
	assert.Equal(t, int64(35000), fee.Amount)

	// Prices are never rewritten by fees.
	b, err := env.bookings.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), b.FinalPrice)
	assert.Len(t, b.Fees, 1)

	_, err = env.bookings.AppendFee(booking.ID, "Minibar", -1, "")
	require.Error(t, err)
	assert.NotNil(t, services.AsValidationError(err))

	_, err = env.bookings.Cancel(booking.ID)
	require.NoError(t, err)
	_, err = env.bookings.AppendFee(booking.ID, "Late", 1000, "")
	require.Error(t, err)
	assert.NotNil(t, services.AsInvalidTransition(err))
}

func TestRecordPayment_Validation(t *testing.T) {
	env := newTestEnv(t)
	booking := env.confirmPending(t)

	_, err := env.bookings.RecordPayment(booking.ID, models.PaymentMethodCard, 1000, "Maybe")
	require.Error(t, err)
	assert.NotNil(t, services.AsValidationError(err))

	_, err = env.bookings.RecordPayment(9999, models.PaymentMethodCard, 1000, models.PaymentStatusSucceeded)
	assert.ErrorIs(t, err, services.ErrBookingNotFound)
}

func TestExpireStalePending(t *testing.T) {
	env := newTestEnv(t)
	stale := env.confirmPending(t)

	fresh, err := env.bookings.ConfirmBooking(func() services.ConfirmBookingInput {
		in := confirmInput(env)
		in.CheckIn = at(16, 0)
		in.CheckOut = at(18, 0)
		return in
	}())
	require.NoError(t, err)

	confirmed, err := env.bookings.ConfirmBooking(func() services.ConfirmBookingInput {
		in := confirmInput(env)
		in.CheckIn = at(19, 0)
		in.CheckOut = at(20, 0)
		return in
	}())
	require.NoError(t, err)
	_, err = env.bookings.Confirm(confirmed.ID)
	require.NoError(t, err)

	// Age the stale and the confirmed bookings past the TTL.
	old := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.Booking{}).
		Where("id IN ?", []uint{stale.ID, confirmed.ID}).
		Update("created_at", old).Error)

	released, err := env.bookings.ExpireStalePending(30 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	b, err := env.bookings.GetBooking(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)

	// Fresh Pending and aged Confirmed bookings are untouched.
	b, err = env.bookings.GetBooking(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	b, err = env.bookings.GetBooking(confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)

	// Zero TTL disables the sweep.
	released, err = env.bookings.ExpireStalePending(0)
	require.NoError(t, err)
	assert.Equal(t, 0, released)
}
