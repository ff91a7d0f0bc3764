package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
	"github.com/Rohith-2027/cab-booking-backend/internal/middleware"
	"github.com/Rohith-2027/cab-booking-backend/internal/services"
)

func ConfirmCashPayment(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		customerID, err := engine.ConfirmCashPayment(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		hub.BroadcastToUser(customerID, services.EventPaymentConfirmed, gin.H{"bookingId": bookingID})
		c.JSON(http.StatusOK, gin.H{"message": "Cash payment confirmed"})
	}
}

// InitiateOnlinePayment validates the payment and hands back a mock
// provider checkout URL pointing at the success callback.
func InitiateOnlinePayment(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		payment, err := engine.InitiateOnlinePayment(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}

		baseURL := os.Getenv("BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:8080"
		}
		paymentURL := fmt.Sprintf("%s/api/payments/mock-provider/%d/success", baseURL, bookingID)

		c.JSON(http.StatusOK, gin.H{
			"paymentUrl": paymentURL,
			"amount":     payment.Amount,
		})
	}
}

// MockProviderSuccess simulates the provider's server-to-server success
// callback. It is unauthenticated and idempotent, as provider webhooks
// are.
func MockProviderSuccess(engine *dispatch.Engine, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		already, customerID, err := engine.OnProviderSuccess(c.Request.Context(), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}
		if already {
			c.JSON(http.StatusOK, gin.H{"message": "Payment already completed"})
			return
		}

		hub.BroadcastToUser(customerID, services.EventPaymentConfirmed, gin.H{"bookingId": bookingID})
		c.JSON(http.StatusOK, gin.H{"message": "Payment successful"})
	}
}

// VerifyOnlinePayment is the rider-initiated settlement fallback for a
// lost provider callback.
func VerifyOnlinePayment(engine *dispatch.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := parseIDParam(c, "id")
		if err != nil {
			return
		}

		already, err := engine.VerifyOnlinePayment(c.Request.Context(), middleware.CurrentActor(c), bookingID)
		if err != nil {
			respondDispatchError(c, err)
			return
		}
		if already {
			c.JSON(http.StatusOK, gin.H{"message": "Payment already verified", "status": "paid"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Payment verified", "status": "paid"})
	}
}
