package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"os"
	"strings"
	"time"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"
	"gamecafe-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

type LicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// licensePlans maps a plan code to how long an activation lasts. A key is
// valid only for the exact device it was generated for.
var licensePlans = map[string]time.Duration{
	"TRIAL":    14 * 24 * time.Hour,
	"QUARTER":  90 * 24 * time.Hour,
	"ANNUAL":   365 * 24 * time.Hour,
	"LIFETIME": 50 * 365 * 24 * time.Hour,
}

func licenseSalt() string {
	if salt := os.Getenv("LICENSE_SALT"); salt != "" {
		return salt
	}
	return "GAMECAFE-LICENSE-SALT"
}

// --- GET /api/system/status ---
// Gives the lock screen the device ID the owner sends us to get a key,
// plus the current activation state.
func GetSystemStatus(c *gin.Context) {
	var license models.SystemLicense
	activated := database.DB.First(&license).Error == nil && license.IsActive &&
		time.Now().Before(license.ExpirationDate)

	respondOK(c, gin.H{
		"device_id": utils.GetDeviceID(),
		"activated": activated,
		"expires":   license.ExpirationDate,
	})
}

// --- POST /api/system/activate ---
// Checks the provided key against every plan for this exact hardware and
// stores the activation.
func ActivateLicense(c *gin.Context) {
	var req LicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	deviceID := utils.GetDeviceID()

	var matchedPlan string
	var matchedDuration time.Duration
	for plan, duration := range licensePlans {
		hash := sha256.Sum256([]byte(deviceID + plan + licenseSalt()))
		expectedKey := plan + "-" + strings.ToUpper(hex.EncodeToString(hash[:])[:12])
		if req.LicenseKey == expectedKey {
			matchedPlan = plan
			matchedDuration = duration
			break
		}
	}

	if matchedPlan == "" {
		respondError(c, http.StatusUnauthorized, "Invalid key for this specific device")
		return
	}

	var license models.SystemLicense
	database.DB.First(&license)

	license.LicenseKey = req.LicenseKey
	license.ExpirationDate = time.Now().Add(matchedDuration)
	license.IsActive = true

	var err error
	if license.ID == 0 {
		err = database.DB.Create(&license).Error
	} else {
		err = database.DB.Save(&license).Error
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to store activation")
		return
	}

	respondOK(c, gin.H{
		"plan":    matchedPlan,
		"expires": license.ExpirationDate,
	})
}
