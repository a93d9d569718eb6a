package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/models"
)

func GetTemples(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var temples []models.Temple

		if err := db.Find(&temples).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch temples"})
			return
		}

		c.JSON(http.StatusOK, temples)
	}
}

func GetTempleDetails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var temple models.Temple
		if err := db.First(&temple, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Temple not found"})
			return
		}

		c.JSON(http.StatusOK, temple)
	}
}
