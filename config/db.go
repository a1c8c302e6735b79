package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-booking-engine/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "booking_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName), nil
}

// ConnectDatabase opens the MySQL connection, migrates the engine's schema,
// and seeds demo catalog data when the catalog is empty.
func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	if err := Migrate(DB); err != nil {
		return err
	}

	SeedDatabase(DB)
	return nil
}

// Migrate applies the schema in parent->child order. The composite unique
// index on bookings (room_id, interval_key) is the storage backstop for the
// no-overlap invariant.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Hotel{},
		&models.Room{},
		&models.RateTier{},
		&models.Promotion{},
		&models.Booking{},
		&models.Fee{},
		&models.Payment{},
	)
}

// SeedDatabase inserts a demo hotel, rooms, rate tiers, and a promotion when
// the catalog is empty. Prices are integral currency units.
func SeedDatabase(db *gorm.DB) {
	var hotelCount int64
	db.Model(&models.Hotel{}).Count(&hotelCount)
	if hotelCount > 0 {
		log.Println("catalog already seeded")
		return
	}

	hotel := models.Hotel{
		Name:     "Riverside Hotel",
		Address:  "1 Riverside Road",
		Phone:    "+66-2-000-0000",
		Email:    "frontdesk@riverside.example",
		Timezone: "UTC",
	}
	if err := db.Create(&hotel).Error; err != nil {
		log.Printf("warning: failed to seed hotel: %v", err)
		return
	}

	rooms := []models.Room{
		{HotelID: hotel.ID, RoomNumber: "101", Floor: "1", Status: models.RoomStatusAvailable, DisplayPrice: 800000, Capacity: 2, Description: "Standard double"},
		{HotelID: hotel.ID, RoomNumber: "102", Floor: "1", Status: models.RoomStatusAvailable, DisplayPrice: 800000, Capacity: 2, Description: "Standard twin"},
		{HotelID: hotel.ID, RoomNumber: "201", Floor: "2", Status: models.RoomStatusAvailable, DisplayPrice: 1200000, Capacity: 4, Description: "Family room"},
	}
	if err := db.Create(&rooms).Error; err != nil {
		log.Printf("warning: failed to seed rooms: %v", err)
		return
	}

	validFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var tiers []models.RateTier
	for _, room := range rooms {
		tiers = append(tiers,
			models.RateTier{RoomID: room.ID, Mode: models.ModeHourly, FirstBlockPrice: 200000, FirstBlockHours: 2, ExtraUnitPrice: 100000, ValidFrom: validFrom, Status: models.TierStatusActive},
			models.RateTier{RoomID: room.ID, Mode: models.ModeOvernight, FirstBlockPrice: 600000, ValidFrom: validFrom, Status: models.TierStatusActive},
			models.RateTier{RoomID: room.ID, Mode: models.ModeDaily, FirstBlockPrice: room.DisplayPrice, ValidFrom: validFrom, Status: models.TierStatusActive},
		)
	}
	if err := db.Create(&tiers).Error; err != nil {
		log.Printf("warning: failed to seed rate tiers: %v", err)
	}

	promo := models.Promotion{
		HotelID:       hotel.ID,
		Name:          "Opening 10% off",
		DiscountKind:  models.DiscountPercent,
		DiscountValue: 10,
		ValidFrom:     validFrom,
		ValidTo:       validFrom.AddDate(1, 0, 0),
		Status:        models.PromotionStatusActive,
	}
	if err := db.Create(&promo).Error; err != nil {
		log.Printf("warning: failed to seed promotion: %v", err)
	}

	log.Println("demo catalog seeded")
}
