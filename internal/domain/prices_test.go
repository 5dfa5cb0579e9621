package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePrices(t *testing.T) {
	tests := []struct {
		name  string
		items []CartItem
		want  Prices
	}{
		{
			name:  "empty cart pays flat shipping",
			items: nil,
			want:  Prices{ItemsPrice: 0, ShippingPrice: 100, TaxPrice: 0, TotalPrice: 100},
		},
		{
			name:  "below threshold",
			items: []CartItem{{Price: 49.99, Qty: 2}},
			want:  Prices{ItemsPrice: 99.98, ShippingPrice: 100, TaxPrice: 15, TotalPrice: 214.98},
		},
		{
			name:  "exactly 100 is not free",
			items: []CartItem{{Price: 100, Qty: 1}},
			want:  Prices{ItemsPrice: 100, ShippingPrice: 100, TaxPrice: 15, TotalPrice: 215},
		},
		{
			name:  "above threshold ships free",
			items: []CartItem{{Price: 89.99, Qty: 1}, {Price: 29.99, Qty: 3}},
			want:  Prices{ItemsPrice: 179.96, ShippingPrice: 0, TaxPrice: 26.99, TotalPrice: 206.95},
		},
		{
			name:  "float sums do not drift",
			items: []CartItem{{Price: 0.1, Qty: 3}},
			want:  Prices{ItemsPrice: 0.3, ShippingPrice: 100, TaxPrice: 0.05, TotalPrice: 100.35},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalculatePrices(tc.items))
		})
	}
}
