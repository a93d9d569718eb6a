package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/models"
)

type AnalyticsController struct {
	DB *gorm.DB
}

func (ac *AnalyticsController) GetDashboardStats(c *gin.Context) {
	var userCount, templeCount, bookingCount, confirmedToday int64

	ac.DB.Model(&models.User{}).Where("deleted = FALSE").Count(&userCount)
	ac.DB.Model(&models.Temple{}).Count(&templeCount)
	ac.DB.Model(&models.Booking{}).Count(&bookingCount)
	ac.DB.Model(&models.Booking{}).
		Where("status = ? AND date = CURRENT_DATE", models.BookingConfirmed).
		Count(&confirmedToday)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"total_users":     userCount,
		"total_temples":   templeCount,
		"total_bookings":  bookingCount,
		"confirmed_today": confirmedToday,
	})
}

func (ac *AnalyticsController) GetBookingsPerTemple(c *gin.Context) {
	type TempleData struct {
		Temple   string `json:"temple"`
		Bookings int64  `json:"bookings"`
		Pilgrims int64  `json:"pilgrims"`
	}

	var results []TempleData

	ac.DB.Table("bookings").
		Select("temples.name as temple, COUNT(bookings.id) as bookings, COALESCE(SUM(bookings.party_size), 0) as pilgrims").
		Joins("JOIN temples ON temples.id = bookings.temple_id").
		Where("bookings.status = ?", models.BookingConfirmed).
		Group("temples.name").
		Order("bookings DESC").
		Limit(7).
		Scan(&results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

func (ac *AnalyticsController) GetDailyBookings(c *gin.Context) {
	type DailyData struct {
		Date     string `json:"date"`
		Bookings int64  `json:"bookings"`
		Pilgrims int64  `json:"pilgrims"`
	}

	var results []DailyData

	ac.DB.Model(&models.Booking{}).
		Select("date, COUNT(id) as bookings, COALESCE(SUM(party_size), 0) as pilgrims").
		Where("status = ?", models.BookingConfirmed).
		Group("date").
		Order("date ASC").
		Limit(7).
		Scan(&results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}

func (ac *AnalyticsController) GetStatusBreakdown(c *gin.Context) {
	type StatusData struct {
		Status   string `json:"status"`
		Bookings int64  `json:"bookings"`
	}

	var results []StatusData

	ac.DB.Model(&models.Booking{}).
		Select("status, COUNT(id) as bookings").
		Group("status").
		Order("bookings DESC").
		Scan(&results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
	})
}
