package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

func GetUserNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var notifications []models.Notification
		if err := db.Where("user_id = ?", actor.ID).
			Order("created_at DESC").
			Limit(50).
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}
