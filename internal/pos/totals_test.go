package pos

import (
	"testing"

	"restoran-pos/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTaxForRoundsHalfUp(t *testing.T) {
	cases := []struct {
		subtotal int64
		bps      int
		want     int64
	}{
		{subtotal: 1000, bps: 825, want: 83},   // 82.5
		{subtotal: 1999, bps: 1000, want: 200}, // 199.9
		{subtotal: 1234, bps: 800, want: 99},   // 98.72
		{subtotal: 100, bps: 50, want: 1},      // 0.5
		{subtotal: 100, bps: 49, want: 0},
		{subtotal: 0, bps: 825, want: 0},
		{subtotal: 500, bps: 0, want: 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TaxFor(tc.subtotal, tc.bps), "subtotal=%d bps=%d", tc.subtotal, tc.bps)
	}
}

func TestComputeOrderTotalsSkipsVoidedItems(t *testing.T) {
	items := []models.OrderItem{
		{Quantity: 2, UnitPrice: 450, LineTotal: LineTotal(2, 450)},
		{Quantity: 1, UnitPrice: 1200, LineTotal: LineTotal(1, 1200), Voided: true},
		{Quantity: 3, UnitPrice: 100, LineTotal: LineTotal(3, 100)},
	}

	got := ComputeOrderTotals(items, 1000)

	assert.Equal(t, int64(1200), got.Subtotal)
	assert.Equal(t, int64(120), got.Tax)
	assert.Equal(t, int64(1320), got.Total)
}

func TestComputeOrderTotalsAllVoided(t *testing.T) {
	items := []models.OrderItem{{LineTotal: 900, Voided: true}}
	assert.Equal(t, Totals{}, ComputeOrderTotals(items, 825))
}

func TestSumOrders(t *testing.T) {
	orders := []models.Order{
		{Subtotal: 1000, Tax: 83, Total: 1083},
		{Subtotal: 500, Tax: 41, Total: 541},
	}
	assert.Equal(t, Totals{Subtotal: 1500, Tax: 124, Total: 1624}, SumOrders(orders))
}
