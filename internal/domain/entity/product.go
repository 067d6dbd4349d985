package entity

import "time"

// Product representa un producto del inventario identificado por su SKU.
// Stock solo cambia vía movimientos (salida/reposición); nunca es negativo.
type Product struct {
	ID        int64
	Name      string
	SKU       string // código único, también codificado en la etiqueta QR
	Stock     int
	CreatedAt time.Time
}
