package sqlite

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/merch-stock/internal/domain"
)

// timeLayout formato fijo en UTC: ordena lexicográficamente igual que cronológicamente.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// dbTime escanea DATETIME tanto si el driver entrega time.Time como texto.
type dbTime struct{ time.Time }

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("sqlite: tipo de fecha no soportado %T", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqlite: fecha inválida %q", s)
}

// Columna afectada por tipo de restricción: el esquema tiene una sola de cada clase.
var constraintFields = map[domain.ConstraintKind]string{
	domain.ConstraintUnique:     "sku",
	domain.ConstraintCheck:      "stock",
	domain.ConstraintForeignKey: "product_id",
}

// classify traduce errores del driver en errores de dominio usando el código extendido de SQLite.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		var kind domain.ConstraintKind
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			kind = domain.ConstraintUnique
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			kind = domain.ConstraintCheck
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			kind = domain.ConstraintForeignKey
		}
		if kind != "" {
			return &domain.ConstraintError{Kind: kind, Field: constraintFields[kind], Err: err}
		}
	}
	return domain.NewStorageError(op, err)
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
