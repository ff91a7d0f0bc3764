package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rohith-2027/cab-booking-backend/internal/dispatch"
)

// respondDispatchError maps the dispatch error taxonomy onto HTTP.
// Internal causes are logged here and never leak to the client.
func respondDispatchError(c *gin.Context, err error) {
	switch {
	case dispatch.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dispatch.IsStateTransition(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case dispatch.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case dispatch.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case dispatch.IsResourceUnavailable(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case dispatch.IsAlreadyProcessed(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
