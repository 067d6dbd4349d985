package repository

import (
	"context"

	"github.com/jhoicas/merch-stock/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetBySKUForUpdate bloquea la fila hasta el fin de la transacción (solo dentro de TxRunner).
	GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error)
	// AdjustStock suma delta al stock; falla con ConstraintError(check, stock) si quedaría negativo.
	AdjustStock(ctx context.Context, id int64, delta int) error
}
