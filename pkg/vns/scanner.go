package vns

import "strings"

// deviceNameMarker identifies SmartVNS devices in advertisement data.
const deviceNameMarker = "SmartVNS"

// Advertisement is the subset of BLE advertisement data the SDK cares
// about, as reported by the platform scanner.
type Advertisement struct {
	Address string
	Name    string
	RSSI    int
}

// FilterAdvertisements keeps only SmartVNS devices from a scan result.
func FilterAdvertisements(adverts []Advertisement) []Advertisement {
	var filtered []Advertisement
	for _, adv := range adverts {
		if adv.Name != "" && strings.Contains(adv.Name, deviceNameMarker) {
			filtered = append(filtered, adv)
		}
	}
	return filtered
}

// IsStimulator reports whether an advertised name identifies a
// Stimulator rather than a Tracker.
func IsStimulator(name string) bool {
	return strings.Contains(name, "Stimulator")
}
