package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

type CreateShiftInput struct {
	ShiftStart time.Time `json:"shiftStart" binding:"required"`
	ShiftEnd   time.Time `json:"shiftEnd" binding:"required"`
}

func CreateShift(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateShiftInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		shift, err := engine.CreateShift(c.Request.Context(), middleware.CurrentActor(c), input.ShiftStart, input.ShiftEnd)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Shift created successfully",
			"shift":   shift,
		})
	}
}

func GetDriverShifts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentActor(c)

		var shifts []models.DriverShift
		if err := db.Where("driver_id = ?", actor.ID).
			Order("shift_start DESC").
			Find(&shifts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shifts"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"shifts": shifts})
	}
}

func EndShift(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		actor := middleware.CurrentActor(c)
		if err := engine.EndShift(c.Request.Context(), actor, shiftID); err != nil {
			respondDispatchError(c, err)
			return
		}

		services.CacheDriverAvailability(c.Request.Context(), actor.ID, false)
		c.JSON(http.StatusOK, gin.H{"message": "Shift ended successfully"})
	}
}
