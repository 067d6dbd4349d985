package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

type movementRow struct {
	ID          int64          `db:"id"`
	ProductID   int64          `db:"product_id"`
	Delta       int            `db:"delta"`
	Reason      string         `db:"reason"`
	Note        sql.NullString `db:"note"`
	CreatedAt   dbTime         `db:"created_at"`
	ProductName string         `db:"name"`
	ProductSKU  string         `db:"sku"`
}

// MovementRepo implementación sobre SQLite (usable con *sqlx.DB o *sqlx.Tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento; nota vacía se guarda como NULL.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	note := sql.NullString{String: movement.Note, Valid: movement.Note != ""}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO movements (product_id, delta, reason, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		movement.ProductID, movement.Delta, movement.Reason, note, formatTime(movement.CreatedAt),
	)
	if err != nil {
		return classify("create movement", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("create movement", err)
	}
	movement.ID = id
	movement.CreatedAt = movement.CreatedAt.UTC()
	return nil
}

func (r *MovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.MovementView, error) {
	if limit <= 0 || limit > repository.MaxRecentMovements {
		limit = repository.MaxRecentMovements
	}
	var rows []movementRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT m.id, m.product_id, m.delta, m.reason, m.note, m.created_at, p.name, p.sku
		FROM movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, classify("list movements", err)
	}
	list := make([]*entity.MovementView, 0, len(rows))
	for _, row := range rows {
		list = append(list, &entity.MovementView{
			Movement: entity.Movement{
				ID:        row.ID,
				ProductID: row.ProductID,
				Delta:     row.Delta,
				Reason:    row.Reason,
				Note:      row.Note.String,
				CreatedAt: row.CreatedAt.Time,
			},
			ProductName: row.ProductName,
			ProductSKU:  row.ProductSKU,
		})
	}
	return list, nil
}
