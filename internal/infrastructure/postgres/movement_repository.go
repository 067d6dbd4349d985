package postgres

import (
	"context"

	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento; nota vacía se guarda como NULL.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	var note *string
	if movement.Note != "" {
		note = &movement.Note
	}
	query := `
		INSERT INTO movements (product_id, delta, reason, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		movement.ProductID, movement.Delta, movement.Reason, note, movement.CreatedAt,
	).Scan(&movement.ID, &movement.CreatedAt)
	return classify("create movement", err)
}

// ListRecent lista los últimos movimientos con nombre y SKU del producto, más nuevo primero.
func (r *MovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	if limit <= 0 || limit > repository.MaxRecentMovements {
		limit = repository.MaxRecentMovements
	}
	query := `
		SELECT m.id, m.product_id, m.delta, m.reason, m.note, m.created_at, p.name, p.sku
		FROM movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, classify("list movements", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementView, 0)
	for rows.Next() {
		var m entity.MovementView
		var note *string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Reason, &note, &m.CreatedAt, &m.ProductName, &m.ProductSKU); err != nil {
			return nil, classify("scan movement", err)
		}
		if note != nil {
			m.Note = *note
		}
		list = append(list, &m)
	}
	return list, classify("list movements", rows.Err())
}
