package controllers

import (
	"net/http"
	"strconv"
	"time"

	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the read-only catalog views the booking engine
// consumes. Catalog writes live in the external management system.
type CatalogController struct {
	Catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{Catalog: catalog}
}

// ListRooms handles GET /api/rooms?hotel_id=
func (ctl *CatalogController) ListRooms(c *gin.Context) {
	var hotelID uint64
	if q := c.Query("hotel_id"); q != "" {
		var err error
		hotelID, err = strconv.ParseUint(q, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid hotel_id")
			return
		}
	}
	rooms, err := ctl.Catalog.ListRooms(uint(hotelID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GetRoom handles GET /api/rooms/:id — the room plus its currently active
// rate tiers.
func (ctl *CatalogController) GetRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	room, tiers, err := ctl.Catalog.GetRoom(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room": room, "rate_tiers": tiers})
}

// ListPromotions handles GET /api/promotions?hotel_id=&room_id=
func (ctl *CatalogController) ListPromotions(c *gin.Context) {
	var hotelID, roomID uint64
	var err error
	if q := c.Query("hotel_id"); q != "" {
		if hotelID, err = strconv.ParseUint(q, 10, 32); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid hotel_id")
			return
		}
	}
	if q := c.Query("room_id"); q != "" {
		if roomID, err = strconv.ParseUint(q, 10, 32); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid room_id")
			return
		}
	}

	promos, err := ctl.Catalog.ListPromotions(uint(hotelID), uint(roomID), time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, promos)
}
