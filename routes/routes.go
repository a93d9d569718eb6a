package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/booking"
	"pilgrimconnect/controllers"
	"pilgrimconnect/ledger"
	"pilgrimconnect/middlewares"
)

func SetupRouter(db *gorm.DB, orc *booking.Orchestrator, led *ledger.Ledger) *gin.Engine {
	r := gin.Default()

	analytics := &controllers.AnalyticsController{DB: db}

	// Public API Routes

	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/signup", controllers.SignupHandler)
		api.POST("/login", controllers.LoginHandler)
		api.POST("/reset-password", controllers.ResetPasswordHandler)
		api.POST("/refresh", controllers.RefreshTokenHandler)
		api.POST("/logout", controllers.LogoutHandler)

		api.POST("/admin/register", controllers.AdminRegister)
		api.POST("/admin/login", controllers.AdminLogin)

		// Public temple routes
		api.GET("/temples", controllers.GetTemples(db))
		api.GET("/temples/:id", controllers.GetTempleDetails(db))
		api.GET("/temples/:id/slots", controllers.GetTempleSlots(db, led))
	}

	// Protected User Routes (Require Login)

	user := r.Group("/api/user")
	user.Use(middlewares.AuthMiddleware(), middlewares.UserOnly())
	{
		user.POST("/bookings", controllers.CreateBooking(orc))
		user.PUT("/bookings/:id/cancel", controllers.CancelBooking(orc))
		user.GET("/mybookings", controllers.GetUserBookings(db))
		user.GET("/bookings/:id", controllers.GetBookingDetailsUser(db))

		user.POST("/pilgrims", controllers.CreatePilgrim(db))
		user.GET("/pilgrims", controllers.GetUserPilgrims(db))
		user.PUT("/pilgrims/:id", controllers.UpdatePilgrim(db))
		user.DELETE("/pilgrims/:id", controllers.DeletePilgrim(db))
	}

	// Admin Routes (Require Admin Access)

	admin := r.Group("/api/admin")
	admin.Use(middlewares.AdminMiddleware())
	{
		admin.GET("/temples", controllers.AdminListTemples(db))
		admin.POST("/temples", controllers.AdminAddTemple(db))
		admin.PUT("/temples/:id", controllers.AdminUpdateTemple(db, led))
		admin.DELETE("/temples/:id", controllers.AdminDeleteTemple(db))

		admin.GET("/bookings", controllers.GetAllBookings(db))
		admin.GET("/bookings/:id", controllers.GetBookingDetails(db))
		admin.PUT("/bookings/:id/status", controllers.UpdateBookingStatus(db))
		admin.PUT("/bookings/:id/cancel", controllers.AdminCancelBooking(orc))
		admin.DELETE("/bookings/:id", controllers.DeleteBooking(db))

		admin.GET("/pilgrims", controllers.AdminListPilgrims(db))

		admin.GET("/users", controllers.GetAllUsers(db))
		admin.POST("/users", controllers.AddUser(db))
		admin.PUT("/users/:id/block", controllers.BlockUser(db))
		admin.DELETE("/users/:id", controllers.DeleteUser(db))

		admin.GET("/analytics/dashboard", analytics.GetDashboardStats)
		admin.GET("/analytics/temples", analytics.GetBookingsPerTemple)
		admin.GET("/analytics/daily", analytics.GetDailyBookings)
		admin.GET("/analytics/status", analytics.GetStatusBreakdown)
	}

	// Fallback for Unknown Routes

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "page not found"})
	})

	return r
}
