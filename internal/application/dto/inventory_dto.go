package dto

import "time"

// StockChangeRequest body para POST /api/consume y POST /api/restock.
// Qty se recibe crudo: ausente, no entero o < 1 se trata como 1.
type StockChangeRequest struct {
	SKU    string `json:"sku"`
	Qty    any    `json:"qty,omitempty" swaggertype:"integer"`
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
}

// MovementResponse movimiento del libro con el nombre y SKU del producto.
type MovementResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
}
