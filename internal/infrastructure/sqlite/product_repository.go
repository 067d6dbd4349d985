package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, sku, stock, created_at`

type productRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	SKU       string `db:"sku"`
	Stock     int    `db:"stock"`
	CreatedAt dbTime `db:"created_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{ID: r.ID, Name: r.Name, SKU: r.SKU, Stock: r.Stock, CreatedAt: r.CreatedAt.Time}
}

// ProductRepo implementación de ProductRepository sobre SQLite (usable con *sqlx.DB o *sqlx.Tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO products (name, sku, stock, created_at) VALUES (?, ?, ?, ?)`,
		product.Name, product.SKU, product.Stock, formatTime(product.CreatedAt),
	)
	if err != nil {
		return classify("insert product", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("insert product", err)
	}
	product.ID = id
	product.CreatedAt = product.CreatedAt.UTC()
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
}

// GetBySKUForUpdate en SQLite no hay bloqueo por fila: la tx IMMEDIATE ya tiene el lock de escritura.
func (r *ProductRepo) GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.GetBySKU(ctx, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	var row productRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return row.toEntity(), nil
}

func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
}

func (r *ProductRepo) ListByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY created_at DESC, id DESC`, ids)
	if err != nil {
		return nil, classify("list products", err)
	}
	return r.list(ctx, query, args...)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, classify("list products", err)
	}
	list := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// AdjustStock suma delta al stock si no queda negativo (condición en el WHERE y CHECK de la tabla).
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0`,
		delta, id, delta,
	)
	if err != nil {
		return classify("adjust stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("adjust stock", err)
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, id); err != nil {
		return classify("adjust stock", err)
	}
	if !exists {
		return &domain.NotFoundError{Resource: "producto", Key: formatID(id)}
	}
	return &domain.ConstraintError{Kind: domain.ConstraintCheck, Field: "stock"}
}
