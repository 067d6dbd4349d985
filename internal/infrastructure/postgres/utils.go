package postgres

import (
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/merch-stock/internal/domain"
)

// Códigos SQLSTATE de violación de restricciones.
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
)

// constraintFields mapea el nombre de la restricción (ver migraciones) a la columna afectada.
var constraintFields = map[string]string{
	"products_sku_key":          "sku",
	"products_stock_check":      "stock",
	"movements_product_id_fkey": "product_id",
}

// classify traduce un error de pgx en un error de dominio tipado: ConstraintError para
// violaciones de restricciones (por código SQLSTATE, nunca por texto) y StorageError para el resto.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		var kind domain.ConstraintKind
		switch pgErr.Code {
		case codeUniqueViolation:
			kind = domain.ConstraintUnique
		case codeCheckViolation:
			kind = domain.ConstraintCheck
		case codeForeignKeyViolation:
			kind = domain.ConstraintForeignKey
		}
		if kind != "" {
			field, ok := constraintFields[pgErr.ConstraintName]
			if !ok {
				field = pgErr.ColumnName
			}
			return &domain.ConstraintError{Kind: kind, Field: field, Err: err}
		}
	}
	return domain.NewStorageError(op, err)
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
