package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "kitchen.4.wave_fired", RoutingKey(4, EventWaveFired))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), 1, EventItemRefired, map[string]int{"item_id": 3}))
}
