package inventory

import (
	"context"

	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso. Garantiza que el ajuste de stock
// y el movimiento se persisten juntos o no se persiste ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Recorder recibe los eventos de negocio para métricas. Puede ser nil.
type Recorder interface {
	StockMoved(kind string, qty int)
	ConsumeRejected(reason string)
}

// Tipos de movimiento para métricas y logs.
const (
	KindConsume = "consume"
	KindRestock = "restock"
)
