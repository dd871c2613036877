package handlers

import (
	"errors"
	"net/http"

	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// Every API response uses the same envelope the frontend expects:
// {success: bool, data?, message?}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondBusinessError maps the domain sentinels to 4xx responses with
// their own message; anything unexpected becomes a generic 500 so we never
// leak SQL errors to the frontend.
func respondBusinessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrOverpayment):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrImmutableMovement),
		errors.Is(err, models.ErrNegativeStock),
		errors.Is(err, models.ErrReferentialConflict),
		errors.Is(err, models.ErrCostCancelled),
		errors.Is(err, models.ErrCostPaid):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func currentUserID(c *gin.Context) uint {
	if id, ok := c.Get("userID"); ok {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}
