package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/booking"
	"pilgrimconnect/models"
)

// bookingError maps orchestrator errors onto HTTP status plus an error
// kind the frontend can switch on.
func bookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"kind": "InvalidRequest", "error": err.Error()})
	case errors.Is(err, booking.ErrTempleClosed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "TempleClosed", "error": err.Error()})
	case errors.Is(err, booking.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{"kind": "SlotFull", "error": "Selected slot is fully booked, please pick another slot"})
	case errors.Is(err, booking.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"kind": "NotCancellable", "error": err.Error()})
	case errors.Is(err, booking.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"kind": "ServiceUnavailable", "error": "Booking service temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"kind": "Internal", "error": "Failed to process booking"})
	}
}

func CreateBooking(orc *booking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PilgrimID        uint   `json:"pilgrim_id" binding:"required"`
			TempleID         uint   `json:"temple_id" binding:"required"`
			Date             string `json:"date" binding:"required"`       // "2006-01-02"
			SlotStart        string `json:"slot_start" binding:"required"` // "HH:MM"
			PartySize        int    `json:"party_size" binding:"required,min=1"`
			PriorityCategory string `json:"priority_category"`
			SpecialNeeds     string `json:"special_needs"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"kind": "InvalidRequest", "error": err.Error()})
			return
		}

		userIDRaw, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDRaw.(uint)

		b, err := orc.Book(c.Request.Context(), booking.BookRequest{
			UserID:           userID,
			PilgrimID:        req.PilgrimID,
			TempleID:         req.TempleID,
			Date:             req.Date,
			SlotStart:        req.SlotStart,
			PartySize:        req.PartySize,
			PriorityCategory: req.PriorityCategory,
			SpecialNeeds:     req.SpecialNeeds,
		})
		if err != nil {
			bookingError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"status":        "confirmed",
			"ticket_number": b.TicketNumber,
			"booking":       b,
		})
	}
}

func CancelBooking(orc *booking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
			return
		}

		userIDRaw, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDRaw.(uint)

		b, err := orc.Cancel(c.Request.Context(), uint(id), userID, false)
		if err != nil {
			if errors.Is(err, booking.ErrAlreadyCancelled) {
				// Second cancel is a no-op, not a failure.
				c.JSON(http.StatusOK, gin.H{"status": "already_cancelled", "booking": b})
				return
			}
			bookingError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "cancelled", "booking": b})
	}
}

func GetUserBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDRaw, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDRaw.(uint)

		var bookings []models.Booking
		if err := db.Preload("Temple").Preload("Pilgrim").
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user bookings"})
			return
		}

		c.JSON(http.StatusOK, bookings)
	}
}

func GetBookingDetailsUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		userIDRaw, exists := c.Get("userId")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDRaw.(uint)

		var b models.Booking
		if err := db.Preload("Temple").Preload("Pilgrim").
			Where("user_id = ?", userID).
			First(&b, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}

		c.JSON(http.StatusOK, b)
	}
}
