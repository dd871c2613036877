package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// GetDeviceID hashes the first active NIC's MAC address into a short,
// readable installation ID ("GC-1A2B3C4D") that license keys are bound to
func GetDeviceID() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "UNKNOWN-DEVICE"
	}

	var macAddress string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp != 0 && len(iface.HardwareAddr) > 0 {
			macAddress = iface.HardwareAddr.String()
			break
		}
	}

	if macAddress == "" {
		return "UNKNOWN-DEVICE"
	}

	hash := sha256.Sum256([]byte(macAddress + "GAMECAFE-POS-SALT"))
	return "GC-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
