package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
	"github.com/Rohith-2027/cab-booking-backend/pkg/utils"
)

type RegisterInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"required"`

	// Customer fields
	FullName string `json:"fullName"`

	// Vendor fields
	VendorName string `json:"vendorName"`

	// Driver fields (vendorId ties the driver to a fleet)
	DriverName    string `json:"driverName"`
	VendorID      uint   `json:"vendorId"`
	LicenseNumber string `json:"licenseNumber"`

	PhoneNumber string `json:"phoneNumber"`
}

// Register creates the user row plus the role-specific profile row in
// one transaction.
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.ValidSignupRole(input.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}

		user := models.User{
			Email:    input.Email,
			Password: input.Password,
			Role:     input.Role,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			switch input.Role {
			case models.RoleCustomer:
				return tx.Create(&models.CustomerProfile{
					UserID:      user.ID,
					FullName:    input.FullName,
					PhoneNumber: input.PhoneNumber,
				}).Error
			case models.RoleVendor:
				return tx.Create(&models.VendorProfile{
					UserID:        user.ID,
					VendorName:    input.VendorName,
					ContactNumber: input.PhoneNumber,
				}).Error
			case models.RoleDriver:
				return tx.Create(&models.Driver{
					UserID:        user.ID,
					VendorID:      input.VendorID,
					DriverName:    input.DriverName,
					PhoneNumber:   input.PhoneNumber,
					LicenseNumber: input.LicenseNumber,
				}).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered or invalid data"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Registration successful",
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}
