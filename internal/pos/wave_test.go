package pos

import (
	"testing"

	"restoran-pos/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNextWaveStatus(t *testing.T) {
	next, ok := NextWaveStatus(models.WaveHeld)
	assert.True(t, ok)
	assert.Equal(t, models.WaveSent, next)

	next, ok = NextWaveStatus(models.WaveReady)
	assert.True(t, ok)
	assert.Equal(t, models.WaveServed, next)

	_, ok = NextWaveStatus(models.WaveServed)
	assert.False(t, ok)

	_, ok = NextWaveStatus("bogus")
	assert.False(t, ok)
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvance(models.WaveSent, models.WaveCooking))
	assert.True(t, CanAdvance(models.WaveCooking, models.WaveReady))
	assert.True(t, CanAdvance(models.WaveReady, models.WaveServed))

	// firing is the only way out of held
	assert.False(t, CanAdvance(models.WaveHeld, models.WaveSent))
	// no skipping
	assert.False(t, CanAdvance(models.WaveSent, models.WaveReady))
	// no going back
	assert.False(t, CanAdvance(models.WaveReady, models.WaveCooking))
	assert.False(t, CanAdvance(models.WaveServed, models.WaveServed))
}

func TestStatusesBefore(t *testing.T) {
	assert.Nil(t, statusesBefore(models.WaveHeld))
	assert.Equal(t, []models.WaveStatus{models.WaveHeld, models.WaveSent}, statusesBefore(models.WaveCooking))
}

func TestParseWaveStatus(t *testing.T) {
	s, ok := ParseWaveStatus("cooking")
	assert.True(t, ok)
	assert.Equal(t, models.WaveCooking, s)

	_, ok = ParseWaveStatus("COOKING")
	assert.False(t, ok)
}
