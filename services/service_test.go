package services_test

import (
	"testing"
	"time"

	"hotel-booking-engine/config"
	"hotel-booking-engine/models"
	"hotel-booking-engine/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection serializes writers, which is what the MySQL row
	// lock provides in production.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

type testEnv struct {
	db           *gorm.DB
	availability *services.AvailabilityService
	pricing      *services.PricingService
	promotions   *services.PromotionService
	catalog      *services.CatalogService
	bookings     *services.BookingService

	hotel models.Hotel
	room  models.Room
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	env := &testEnv{
		db:           db,
		availability: services.NewAvailabilityService(db),
		pricing:      services.NewPricingService(db),
		promotions:   services.NewPromotionService(db),
		catalog:      services.NewCatalogService(db),
	}
	env.bookings = services.NewBookingService(db, env.availability, env.pricing, env.promotions, nil)

	env.hotel = models.Hotel{Name: "Test Hotel", Timezone: "UTC"}
	require.NoError(t, db.Create(&env.hotel).Error)

	env.room = models.Room{
		HotelID:    env.hotel.ID,
		RoomNumber: "101",
		Status:     models.RoomStatusAvailable,
		Capacity:   3,
	}
	require.NoError(t, db.Create(&env.room).Error)

	return env
}

// seedHourlyTier installs the worked-example tier: first 2 hours for 200000,
// then 100000 per extra hour.
func (env *testEnv) seedHourlyTier(t *testing.T) models.RateTier {
	t.Helper()
	tier := models.RateTier{
		RoomID:          env.room.ID,
		Mode:            models.ModeHourly,
		FirstBlockPrice: 200000,
		FirstBlockHours: 2,
		ExtraUnitPrice:  100000,
		ValidFrom:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:          models.TierStatusActive,
	}
	require.NoError(t, env.db.Create(&tier).Error)
	return tier
}

func (env *testEnv) seedTier(t *testing.T, mode string, firstBlock int64) models.RateTier {
	t.Helper()
	tier := models.RateTier{
		RoomID:          env.room.ID,
		Mode:            mode,
		FirstBlockPrice: firstBlock,
		ValidFrom:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:          models.TierStatusActive,
	}
	require.NoError(t, env.db.Create(&tier).Error)
	return tier
}

func (env *testEnv) seedPromotion(t *testing.T, kind string, value int64) models.Promotion {
	t.Helper()
	promo := models.Promotion{
		HotelID:       env.hotel.ID,
		Name:          "test promo",
		DiscountKind:  kind,
		DiscountValue: value,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:       time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		Status:        models.PromotionStatusActive,
	}
	require.NoError(t, env.db.Create(&promo).Error)
	return promo
}

// at builds a UTC instant on 2026-06-15, the date most tests book around.
func at(hour, min int) time.Time {
	return time.Date(2026, 6, 15, hour, min, 0, 0, time.UTC)
}
