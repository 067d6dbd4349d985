package repository

import (
	"context"

	"github.com/jhoicas/merch-stock/internal/domain/entity"
)

// MaxRecentMovements tope del listado de movimientos recientes.
const MaxRecentMovements = 200

// MovementRepository define el puerto de persistencia para el libro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// ListRecent devuelve los últimos limit movimientos (más nuevo primero) con nombre y SKU del producto.
	ListRecent(ctx context.Context, limit int) ([]*entity.MovementView, error)
}
