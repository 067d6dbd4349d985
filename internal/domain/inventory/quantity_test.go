package inventory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/merch-stock/internal/domain/inventory"
)

func TestQuantity(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want int
	}{
		{"ausente", nil, 1},
		{"entero", float64(3), 3},
		{"cero", float64(0), 1},
		{"negativo", float64(-4), 1},
		{"fraccionario", 2.5, 1},
		{"texto", "5", 1},
		{"booleano", true, 1},
		{"json.Number", json.Number("7"), 7},
		{"json.Number inválido", json.Number("x"), 1},
		{"fuera de rango", float64(3_000_000_000), inventory.MaxQuantity},
		{"fuera de rango json.Number", json.Number("1e12"), inventory.MaxQuantity},
		{"negativo fuera de rango", float64(-3_000_000_000), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.Quantity(tc.raw))
		})
	}
}

func TestInitialStock(t *testing.T) {
	assert.Equal(t, 0, inventory.InitialStock(nil))
	assert.Equal(t, 10, inventory.InitialStock(float64(10)))
	assert.Equal(t, 0, inventory.InitialStock(float64(-3)))
	assert.Equal(t, 0, inventory.InitialStock(1.5))
	assert.Equal(t, 0, inventory.InitialStock("10"))
	assert.Equal(t, inventory.MaxQuantity, inventory.InitialStock(float64(3_000_000_000)))
	assert.Equal(t, 0, inventory.InitialStock(float64(-3_000_000_000)))
}

func TestTextOr(t *testing.T) {
	assert.Equal(t, "delivery", inventory.TextOr("   ", "delivery"))
	assert.Equal(t, "sale", inventory.TextOr("  sale ", "delivery"))
	assert.Equal(t, "", inventory.Text("\t\n"))
}
