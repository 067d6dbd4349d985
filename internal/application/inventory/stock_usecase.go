package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/inventory"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// StockUseCase registra salidas (consume) y reposiciones (restock) de forma transaccional:
// bloqueo de la fila del producto, verificación de stock, ajuste y movimiento en la misma tx.
type StockUseCase struct {
	txRunner     TxRunner
	movementRepo repository.MovementRepository
	recorder     Recorder
	log          *logger.Logger
	now          func() time.Time
}

// NewStockUseCase construye el caso de uso. recorder y log pueden ser nil.
func NewStockUseCase(
	txRunner TxRunner,
	movementRepo repository.MovementRepository,
	recorder Recorder,
	log *logger.Logger,
) *StockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{
		txRunner:     txRunner,
		movementRepo: movementRepo,
		recorder:     recorder,
		log:          log,
		now:          time.Now,
	}
}

// stockChange entrada ya normalizada.
type stockChange struct {
	kind   string
	sku    string
	qty    int
	reason string
	note   string
}

func normalize(kind string, in dto.StockChangeRequest, defaultReason string) (stockChange, error) {
	sku := inventory.Text(in.SKU)
	if sku == "" {
		return stockChange{}, &domain.ValidationError{Field: "sku", Message: "sku es requerido"}
	}
	return stockChange{
		kind:   kind,
		sku:    sku,
		qty:    inventory.Quantity(in.Qty),
		reason: inventory.TextOr(in.Reason, defaultReason),
		note:   inventory.Text(in.Note),
	}, nil
}

// Consume descuenta qty del producto con el SKU dado y registra un movimiento negativo.
// Falla con InsufficientStockError (stock actual incluido) si stock < qty; el estado no cambia.
func (uc *StockUseCase) Consume(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	change, err := normalize(KindConsume, in, entity.ReasonConsume)
	if err != nil {
		return nil, err
	}
	out, err := uc.apply(ctx, change)
	if err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			uc.log.Warn().Str("sku", ise.SKU).Int("stock", ise.Stock).Int("qty", ise.Requested).Msg("salida rechazada: stock insuficiente")
			uc.rejected("insufficient_stock")
		} else if errors.Is(err, domain.ErrNotFound) {
			uc.rejected("not_found")
		}
		return nil, err
	}
	return out, nil
}

// Restock suma qty al producto con el SKU dado y registra un movimiento positivo.
func (uc *StockUseCase) Restock(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	change, err := normalize(KindRestock, in, entity.ReasonRestock)
	if err != nil {
		return nil, err
	}
	return uc.apply(ctx, change)
}

// apply bloquea el producto, verifica, ajusta stock, guarda el movimiento y relee el producto,
// todo en una sola transacción.
func (uc *StockUseCase) apply(ctx context.Context, change stockChange) (*dto.ProductResponse, error) {
	delta := change.qty
	if change.kind == KindConsume {
		delta = -change.qty
	}

	var updated *entity.Product
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error {
		product, err := productRepo.GetBySKUForUpdate(ctx, change.sku)
		if err != nil {
			return err
		}
		if product == nil {
			return &domain.NotFoundError{Resource: "producto", Key: change.sku}
		}
		if product.Stock+delta < 0 {
			return &domain.InsufficientStockError{SKU: product.SKU, Stock: product.Stock, Requested: change.qty}
		}

		if err := productRepo.AdjustStock(ctx, product.ID, delta); err != nil {
			if domain.IsConstraint(err, domain.ConstraintCheck, "stock") {
				return &domain.InsufficientStockError{SKU: product.SKU, Stock: product.Stock, Requested: change.qty}
			}
			return err
		}
		mov := &entity.Movement{
			ProductID: product.ID,
			Delta:     delta,
			Reason:    change.reason,
			Note:      change.note,
			CreatedAt: uc.now().UTC(),
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		updated, err = productRepo.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return &domain.NotFoundError{Resource: "producto", Key: change.sku}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("kind", change.kind).
		Str("sku", updated.SKU).
		Int("delta", delta).
		Int("stock", updated.Stock).
		Str("reason", change.reason).
		Msg("movimiento registrado")
	if uc.recorder != nil {
		uc.recorder.StockMoved(change.kind, change.qty)
	}

	out := dto.FromProduct(updated)
	return &out, nil
}

func (uc *StockUseCase) rejected(reason string) {
	if uc.recorder != nil {
		uc.recorder.ConsumeRejected(reason)
	}
}

// ListMovements devuelve los movimientos más recientes (tope 200), más nuevo primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 || limit > repository.MaxRecentMovements {
		limit = repository.MaxRecentMovements
	}
	list, err := uc.movementRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovementView(m))
	}
	return out, nil
}
