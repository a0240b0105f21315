package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "restoran_pos:m:42:menu", MenuKey(42))
	assert.True(t, strings.HasPrefix(MenuKey(42), MerchantPrefix(42)))
	assert.False(t, strings.HasPrefix(MenuKey(420), MerchantPrefix(42)))
}

func TestNoop(t *testing.T) {
	var s Store = Noop{}
	var dst map[string]any
	assert.ErrorIs(t, s.GetJSON(context.Background(), "k", &dst), ErrMiss)
	assert.NoError(t, s.SetJSON(context.Background(), "k", 1, time.Minute))
	n, err := s.DeletePrefix(context.Background(), Prefix)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
