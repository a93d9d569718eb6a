package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/booking"
	"pilgrimconnect/catalog"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
)

// Admin: Add Temple
func AdminAddTemple(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name                string `json:"name" binding:"required"`
			City                string `json:"city"`
			State               string `json:"state"`
			OpeningTime         string `json:"opening_time" binding:"required"`
			ClosingTime         string `json:"closing_time" binding:"required"`
			SlotDurationMinutes int    `json:"slot_duration_minutes"`
			SlotCapacity        int    `json:"slot_capacity" binding:"required,min=1"`
			ImageURL            string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		temple := models.Temple{
			Name:                input.Name,
			City:                input.City,
			State:               input.State,
			OpeningTime:         input.OpeningTime,
			ClosingTime:         input.ClosingTime,
			SlotDurationMinutes: input.SlotDurationMinutes,
			SlotCapacity:        input.SlotCapacity,
			ImageURL:            input.ImageURL,
		}

		// Reject hours the slot generator cannot carve up.
		if _, err := catalog.Slots(temple); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := db.Create(&temple).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create temple"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"temple": temple})
	}
}

// Admin: List Temples
func AdminListTemples(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var temples []models.Temple
		if err := db.Find(&temples).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch temples"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"temples": temples})
	}
}

// AdminUpdateTemple edits temple details. A capacity change applies to
// today's and future slot ledgers and is refused when any of them
// already holds more reservations than the new capacity.
func AdminUpdateTemple(db *gorm.DB, led *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid temple ID"})
			return
		}

		var temple models.Temple
		if err := db.First(&temple, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Temple not found"})
			return
		}

		var input struct {
			Name                string `json:"name"`
			City                string `json:"city"`
			State               string `json:"state"`
			OpeningTime         string `json:"opening_time"`
			ClosingTime         string `json:"closing_time"`
			SlotDurationMinutes int    `json:"slot_duration_minutes"`
			SlotCapacity        int    `json:"slot_capacity"`
			ImageURL            string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.Name != "" {
			temple.Name = input.Name
		}
		if input.City != "" {
			temple.City = input.City
		}
		if input.State != "" {
			temple.State = input.State
		}
		if input.OpeningTime != "" {
			temple.OpeningTime = input.OpeningTime
		}
		if input.ClosingTime != "" {
			temple.ClosingTime = input.ClosingTime
		}
		if input.SlotDurationMinutes > 0 {
			temple.SlotDurationMinutes = input.SlotDurationMinutes
		}
		if input.ImageURL != "" {
			temple.ImageURL = input.ImageURL
		}

		capacityChanged := input.SlotCapacity > 0 && input.SlotCapacity != temple.SlotCapacity
		if capacityChanged {
			temple.SlotCapacity = input.SlotCapacity
		}

		if _, err := catalog.Slots(temple); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if capacityChanged {
			today := time.Now().Format("2006-01-02")
			if err := led.ApplyCapacity(c.Request.Context(), temple.ID, today, temple.SlotCapacity); err != nil {
				if errors.Is(err, ledger.ErrCapacityBelowReserved) {
					c.JSON(http.StatusConflict, gin.H{
						"kind":  "CapacityBelowReserved",
						"error": "New capacity is below existing reservations on one or more slots",
					})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply capacity change"})
				return
			}
		}

		if err := db.Save(&temple).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update temple"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Temple updated successfully", "temple": temple})
	}
}

// Admin: Delete Temple
func AdminDeleteTemple(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid temple ID"})
			return
		}

		var temple models.Temple
		if err := db.First(&temple, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Temple not found"})
			return
		}

		var active int64
		db.Model(&models.Booking{}).
			Where("temple_id = ? AND status IN ?", id, []string{models.BookingPending, models.BookingConfirmed}).
			Count(&active)
		if active > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Temple has active bookings"})
			return
		}

		if err := db.Unscoped().Delete(&temple, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete temple"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Temple deleted"})
	}
}

// Admin: List all bookings (with optional status filter and name/phone search)
func GetAllBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bookings []models.Booking

		search := c.Query("search")
		status := c.Query("status")

		query := db.Preload("User").Preload("Temple").Preload("Pilgrim")

		if status != "" {
			query = query.Where("bookings.status = ?", status)
		}

		if search != "" {
			query = query.Joins("JOIN pilgrims ON pilgrims.id = bookings.pilgrim_id").
				Where("LOWER(pilgrims.full_name) LIKE LOWER(?) OR pilgrims.phone LIKE ?", "%"+search+"%", "%"+search+"%")
		}

		if err := query.Order("bookings.created_at DESC").Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
	}
}

// attendanceTransitions lists the statuses an admin may move a booking
// into at the gate, keyed by the current status. Seats are never
// returned by these moves; only cancellation releases seats.
var attendanceTransitions = map[string][]string{
	models.BookingConfirmed: {models.BookingCheckedIn, models.BookingNoShow},
	models.BookingCheckedIn: {models.BookingCompleted},
}

// Admin: Update booking attendance status
func UpdateBookingStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		var b models.Booking
		if err := db.First(&b, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}

		allowed := false
		for _, next := range attendanceTransitions[b.Status] {
			if next == body.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cannot move booking from " + b.Status + " to " + body.Status,
			})
			return
		}

		b.Status = body.Status
		if err := db.Save(&b).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Booking status updated successfully", "booking": b})
	}
}

// AdminCancelBooking cancels on the pilgrim's behalf and releases the
// reserved seats.
func AdminCancelBooking(orc *booking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
			return
		}

		b, err := orc.Cancel(c.Request.Context(), uint(id), 0, true)
		if err != nil {
			if errors.Is(err, booking.ErrAlreadyCancelled) {
				c.JSON(http.StatusOK, gin.H{"status": "already_cancelled", "booking": b})
				return
			}
			bookingError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "cancelled", "booking": b})
	}
}

// DeleteBooking — Admin: delete a finished or cancelled booking record
func DeleteBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var b models.Booking
		if err := db.First(&b, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}

		if b.Status == models.BookingPending || b.Status == models.BookingConfirmed {
			c.JSON(http.StatusConflict, gin.H{"error": "Cancel the booking before deleting it"})
			return
		}

		if err := db.Delete(&models.Booking{}, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete booking"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
	}
}

func GetBookingDetails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var b models.Booking
		if err := db.Preload("User").
			Preload("Temple").
			Preload("Pilgrim").
			First(&b, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"booking": b})
	}
}
