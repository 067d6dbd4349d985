package entity

import "time"

// Motivos por defecto de los movimientos.
const (
	ReasonConsume = "delivery" // salida por escaneo
	ReasonRestock = "restock"
)

// Movement entrada inmutable del libro de movimientos: negativo = salida, positivo = reposición.
type Movement struct {
	ID        int64
	ProductID int64
	Delta     int
	Reason    string
	Note      string // vacío se persiste como NULL
	CreatedAt time.Time
}

// MovementView movimiento con el nombre y SKU de su producto (listado reciente).
type MovementView struct {
	Movement
	ProductName string
	ProductSKU  string
}
