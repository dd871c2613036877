package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondBusinessError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid amount", models.ErrInvalidAmount, http.StatusBadRequest},
		{"insufficient stock", models.ErrInsufficientStock, http.StatusBadRequest},
		{"overpayment", models.ErrOverpayment, http.StatusBadRequest},
		{"immutable movement", models.ErrImmutableMovement, http.StatusConflict},
		{"negative stock", models.ErrNegativeStock, http.StatusConflict},
		{"referential conflict", models.ErrReferentialConflict, http.StatusConflict},
		{"cancelled cost", models.ErrCostCancelled, http.StatusConflict},
		{"paid cost", models.ErrCostPaid, http.StatusConflict},
		{"unexpected error", errors.New("sql went sideways"), http.StatusInternalServerError},
		// Checkout wraps the sentinel with the item name; the mapping must
		// still see through it.
		{"wrapped insufficient stock", fmt.Errorf("Milk: %w", models.ErrInsufficientStock), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondBusinessError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRespondBusinessError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondBusinessError(c, errors.New("Error 1062: Duplicate entry"))

	assert.NotContains(t, w.Body.String(), "1062")
}
