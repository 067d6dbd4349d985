package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, sku, stock, created_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto y completa ID y CreatedAt con los valores de la BD.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, sku, stock, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, product.Name, product.SKU, product.Stock, product.CreatedAt).
		Scan(&product.ID, &product.CreatedAt)
	return classify("insert product", err)
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetBySKU obtiene un producto por SKU; (nil, nil) si no existe.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// GetBySKUForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *ProductRepo) GetBySKUForUpdate(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product for update", `SELECT `+productColumns+` FROM products WHERE sku = $1 FOR UPDATE`, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.SKU, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return &p, nil
}

// List lista todos los productos, más nuevo primero.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
}

// ListByIDs lista los productos con los IDs dados, más nuevo primero.
func (r *ProductRepo) ListByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY created_at DESC, id DESC`, ids)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Stock, &p.CreatedAt); err != nil {
			return nil, classify("scan product", err)
		}
		list = append(list, &p)
	}
	return list, classify("list products", rows.Err())
}

// AdjustStock suma delta al stock. La condición stock + delta >= 0 y el CHECK de la tabla
// impiden dejarlo negativo aun si el llamador no bloqueó la fila.
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0`,
		id, delta,
	)
	if err != nil {
		return classify("adjust stock", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return classify("adjust stock", err)
		}
		if !exists {
			return &domain.NotFoundError{Resource: "producto", Key: formatID(id)}
		}
		return &domain.ConstraintError{Kind: domain.ConstraintCheck, Field: "stock"}
	}
	return nil
}
