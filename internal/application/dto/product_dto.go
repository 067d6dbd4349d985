package dto

import "time"

// CreateProductRequest entrada para crear un producto.
// Stock se recibe como valor JSON crudo: solo un entero >= 0 se respeta, lo demás cuenta como 0.
type CreateProductRequest struct {
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Stock any    `json:"stock,omitempty" swaggertype:"integer"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}
