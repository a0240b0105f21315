package pos

import "restoran-pos/internal/models"

var waveOrder = []models.WaveStatus{
	models.WaveHeld,
	models.WaveSent,
	models.WaveCooking,
	models.WaveReady,
	models.WaveServed,
}

func waveIndex(s models.WaveStatus) int {
	for i, v := range waveOrder {
		if v == s {
			return i
		}
	}
	return -1
}

func ParseWaveStatus(raw string) (models.WaveStatus, bool) {
	s := models.WaveStatus(raw)
	return s, waveIndex(s) >= 0
}

// NextWaveStatus returns the status after s; false once served.
func NextWaveStatus(s models.WaveStatus) (models.WaveStatus, bool) {
	i := waveIndex(s)
	if i < 0 || i == len(waveOrder)-1 {
		return "", false
	}
	return waveOrder[i+1], true
}

// CanAdvance allows a single forward step. held -> sent happens only by firing.
func CanAdvance(from, to models.WaveStatus) bool {
	if from == models.WaveHeld {
		return false
	}
	next, ok := NextWaveStatus(from)
	return ok && next == to
}

// statusesBefore lists the statuses that come strictly before s.
func statusesBefore(s models.WaveStatus) []models.WaveStatus {
	i := waveIndex(s)
	if i <= 0 {
		return nil
	}
	out := make([]models.WaveStatus, i)
	copy(out, waveOrder[:i])
	return out
}

// IsInKitchen is true while the kitchen still has work on the wave.
func IsInKitchen(s models.WaveStatus) bool {
	return s == models.WaveSent || s == models.WaveCooking
}
