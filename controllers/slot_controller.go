package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/catalog"
	"pilgrimconnect/ledger"
	"pilgrimconnect/models"
)

// GetTempleSlots returns the day's slot list with live availability.
// Occupancy comes from the reservation ledger; a slot without a ledger
// row has its full configured capacity free.
func GetTempleSlots(db *gorm.DB, led *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		templeID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid temple ID"})
			return
		}

		date := c.Query("date")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		var temple models.Temple
		if err := db.First(&temple, templeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Temple not found"})
			return
		}

		slots, err := catalog.Slots(temple)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"kind": "TempleClosed", "error": err.Error()})
			return
		}

		layout := []gin.H{}
		for _, s := range slots {
			reserved := 0
			capacity := s.Capacity
			r, total, oerr := led.Occupancy(c.Request.Context(), ledger.SlotKey{
				TempleID:  temple.ID,
				Date:      date,
				SlotStart: s.Start,
			})
			if oerr == nil {
				reserved, capacity = r, total
			} else if !errors.Is(oerr, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slot occupancy"})
				return
			}

			status := "available"
			if reserved >= capacity {
				status = "full"
			}
			layout = append(layout, gin.H{
				"start":     s.Start,
				"end":       s.End,
				"capacity":  capacity,
				"reserved":  reserved,
				"available": capacity - reserved,
				"status":    status,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"temple_id": temple.ID,
			"date":      date,
			"slots":     layout,
		})
	}
}
