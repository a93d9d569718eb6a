package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilgrimconnect/models"
)

// Pilgrim records belong to the signed-in account; a user can only see
// and edit their own entries.

func CreatePilgrim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FullName         string `json:"full_name" binding:"required"`
			Phone            string `json:"phone" binding:"required"`
			Email            string `json:"email" binding:"omitempty,email"`
			Age              int    `json:"age" binding:"required,min=1,max=120"`
			Gender           string `json:"gender"`
			IDType           string `json:"id_type" binding:"required"`
			IDNumber         string `json:"id_number" binding:"required"`
			PriorityCategory string `json:"priority_category"`
			EmergencyName    string `json:"emergency_contact_name"`
			EmergencyPhone   string `json:"emergency_contact_phone"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID := c.MustGet("userId").(uint)

		pilgrim := models.Pilgrim{
			UserID:                userID,
			FullName:              input.FullName,
			Phone:                 input.Phone,
			Email:                 input.Email,
			Age:                   input.Age,
			Gender:                input.Gender,
			IDType:                input.IDType,
			IDNumber:              input.IDNumber,
			PriorityCategory:      input.PriorityCategory,
			EmergencyContactName:  input.EmergencyName,
			EmergencyContactPhone: input.EmergencyPhone,
		}

		if err := db.Create(&pilgrim).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create pilgrim record"})
			return
		}

		c.JSON(http.StatusCreated, pilgrim)
	}
}

func GetUserPilgrims(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("userId").(uint)

		var pilgrims []models.Pilgrim
		if err := db.Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&pilgrims).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pilgrims"})
			return
		}

		c.JSON(http.StatusOK, pilgrims)
	}
}

func UpdatePilgrim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		userID := c.MustGet("userId").(uint)

		var pilgrim models.Pilgrim
		if err := db.Where("user_id = ?", userID).First(&pilgrim, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pilgrim not found"})
			return
		}

		var input struct {
			FullName         string `json:"full_name"`
			Phone            string `json:"phone"`
			Age              int    `json:"age"`
			Gender           string `json:"gender"`
			IDType           string `json:"id_type"`
			IDNumber         string `json:"id_number"`
			PriorityCategory string `json:"priority_category"`
			EmergencyName    string `json:"emergency_contact_name"`
			EmergencyPhone   string `json:"emergency_contact_phone"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.FullName != "" {
			updates["full_name"] = input.FullName
		}
		if input.Phone != "" {
			updates["phone"] = input.Phone
		}
		if input.Age > 0 {
			updates["age"] = input.Age
		}
		if input.Gender != "" {
			updates["gender"] = input.Gender
		}
		if input.IDType != "" {
			updates["id_type"] = input.IDType
		}
		if input.IDNumber != "" {
			updates["id_number"] = input.IDNumber
		}
		if input.PriorityCategory != "" {
			updates["priority_category"] = input.PriorityCategory
		}
		if input.EmergencyName != "" {
			updates["emergency_contact_name"] = input.EmergencyName
		}
		if input.EmergencyPhone != "" {
			updates["emergency_contact_phone"] = input.EmergencyPhone
		}

		if len(updates) > 0 {
			if err := db.Model(&pilgrim).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update pilgrim"})
				return
			}
		}

		c.JSON(http.StatusOK, pilgrim)
	}
}

func DeletePilgrim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		userID := c.MustGet("userId").(uint)

		res := db.Where("user_id = ?", userID).Delete(&models.Pilgrim{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete pilgrim"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pilgrim not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Pilgrim deleted"})
	}
}

// AdminListPilgrims lists all registered pilgrims across users.
func AdminListPilgrims(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pilgrims []models.Pilgrim
		q := db.Order("created_at desc")
		if search := c.Query("search"); search != "" {
			q = q.Where("full_name LIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%")
		}
		if err := q.Find(&pilgrims).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pilgrims"})
			return
		}

		c.JSON(http.StatusOK, pilgrims)
	}
}
