package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"hotel-booking-engine/models"
	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type ConfirmBookingRequest struct {
	RoomID         uint                `json:"room_id" binding:"required"`
	GuestID        uint                `json:"guest_id" binding:"required"`
	Mode           string              `json:"mode" binding:"required"`
	CheckIn        time.Time           `json:"check_in" binding:"required"`
	CheckOut       time.Time           `json:"check_out" binding:"required"`
	Adults         int                 `json:"adults"`
	Children       int                 `json:"children"`
	PromotionID    *uint               `json:"promotion_id"`
	ExpectedTotal  *int64              `json:"expected_total"`
	Fees           []services.FeeInput `json:"fees"`
	PaymentMethod  string              `json:"payment_method"`
	IdempotencyKey string              `json:"idempotency_key"`
}

type QuoteRequest struct {
	RoomID      uint      `json:"room_id" binding:"required"`
	Mode        string    `json:"mode" binding:"required"`
	CheckIn     time.Time `json:"check_in" binding:"required"`
	CheckOut    time.Time `json:"check_out" binding:"required"`
	PromotionID *uint     `json:"promotion_id"`
}

type RecordPaymentRequest struct {
	Method string `json:"method" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type AppendFeeRequest struct {
	Type   string `json:"type" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	Bookings     *services.BookingService
	Availability *services.AvailabilityService
	Pricing      *services.PricingService
	Promotions   *services.PromotionService
	Catalog      *services.CatalogService
}

func NewBookingController(
	bookings *services.BookingService,
	availability *services.AvailabilityService,
	pricing *services.PricingService,
	promotions *services.PromotionService,
	catalog *services.CatalogService,
) *BookingController {
	return &BookingController{
		Bookings:     bookings,
		Availability: availability,
		Pricing:      pricing,
		Promotions:   promotions,
		Catalog:      catalog,
	}
}

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	if ve := services.AsValidationError(err); ve != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation_failed", "fields": ve.Fields()})
		return
	}
	if ite := services.AsInvalidTransition(err); ite != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": "invalid_transition", "from": ite.From, "to": ite.To})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidInterval):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrPromotionNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrRoomUnavailable),
		errors.Is(err, services.ErrPriceMismatch):
		utils.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPromotionExpired),
		errors.Is(err, services.ErrPromotionNotApplicable),
		errors.Is(err, services.ErrNoActiveRate):
		utils.JSONError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// CheckAvailability handles GET /api/availability?room_id=&check_in=&check_out=
func (ctl *BookingController) CheckAvailability(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Query("room_id"), 10, 32)
	if err != nil || roomID == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid room_id")
		return
	}
	checkIn, err := time.Parse(time.RFC3339, c.Query("check_in"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid check_in, expected RFC3339")
		return
	}
	checkOut, err := time.Parse(time.RFC3339, c.Query("check_out"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid check_out, expected RFC3339")
		return
	}

	available, err := ctl.Availability.IsAvailable(uint(roomID), checkIn, checkOut, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"available": available})
}

// Quote handles POST /api/bookings/quote: price a prospective booking without
// committing anything.
func (ctl *BookingController) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	basePrice, tierID, err := ctl.Pricing.CalculateBasePrice(req.RoomID, req.Mode, req.CheckIn, req.CheckOut)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	room, _, err := ctl.Catalog.GetRoom(req.RoomID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	discount, finalPrice, err := ctl.Promotions.Apply(basePrice, req.PromotionID, room.HotelID, req.RoomID, req.CheckIn)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"base_price":      basePrice,
		"discount_amount": discount,
		"final_price":     finalPrice,
		"rate_tier_id":    tierID,
	})
}

// ConfirmBooking handles POST /api/bookings. The idempotency key may arrive
// in the Idempotency-Key header or in the body; the header wins.
func (ctl *BookingController) ConfirmBooking(c *gin.Context) {
	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		key = req.IdempotencyKey
	}

	adults := req.Adults
	if adults == 0 {
		adults = 1
	}

	booking, err := ctl.Bookings.ConfirmBooking(services.ConfirmBookingInput{
		RoomID:         req.RoomID,
		GuestID:        req.GuestID,
		Mode:           req.Mode,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Adults:         adults,
		Children:       req.Children,
		PromotionID:    req.PromotionID,
		ExpectedTotal:  req.ExpectedTotal,
		Fees:           req.Fees,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: key,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GetBooking handles GET /api/bookings/:id
func (ctl *BookingController) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := ctl.Bookings.GetBooking(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// ListBookings handles GET /api/bookings?room_id=
func (ctl *BookingController) ListBookings(c *gin.Context) {
	var roomID uint64
	if q := c.Query("room_id"); q != "" {
		var err error
		roomID, err = strconv.ParseUint(q, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid room_id")
			return
		}
	}
	list, err := ctl.Bookings.ListBookings(uint(roomID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// Confirm handles POST /api/bookings/:id/confirm
func (ctl *BookingController) Confirm(c *gin.Context) {
	ctl.runTransition(c, ctl.Bookings.Confirm)
}

// Pay handles POST /api/bookings/:id/pay
func (ctl *BookingController) Pay(c *gin.Context) {
	ctl.runTransition(c, ctl.Bookings.MarkPaid)
}

// Complete handles POST /api/bookings/:id/complete
func (ctl *BookingController) Complete(c *gin.Context) {
	ctl.runTransition(c, ctl.Bookings.Complete)
}

// Cancel handles POST /api/bookings/:id/cancel
func (ctl *BookingController) Cancel(c *gin.Context) {
	ctl.runTransition(c, ctl.Bookings.Cancel)
}

func (ctl *BookingController) runTransition(c *gin.Context, fn func(uint) (*models.Booking, error)) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := fn(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// RecordPayment handles POST /api/bookings/:id/payments
func (ctl *BookingController) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := ctl.Bookings.RecordPayment(id, req.Method, req.Amount, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, payment)
}

// AppendFee handles POST /api/bookings/:id/fees
func (ctl *BookingController) AppendFee(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req AppendFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	fee, err := ctl.Bookings.AppendFee(id, req.Type, req.Amount, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, fee)
}
