package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // driver SQLite en Go puro
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath abre una base en memoria (tests y demos).
const MemoryPath = ":memory:"

// Querier es lo común entre *sqlx.DB y *sqlx.Tx: los repositorios funcionan con ambos.
type Querier interface {
	sqlx.ExtContext
}

// Open abre la base SQLite en path con claves foráneas activas y transacciones IMMEDIATE:
// el lock de escritura se toma al iniciar la tx, así dos salidas concurrentes se serializan.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	memory := path == MemoryPath || path == ""
	dsn := buildDSN(path, memory)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if memory {
		// Cada conexión a :memory: es una base distinta: una sola conexión compartida.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func buildDSN(path string, memory bool) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	if memory {
		return "file::memory:?" + strings.Join(params, "&")
	}
	params = append(params, "_pragma=journal_mode(WAL)")
	return "file:" + path + "?" + strings.Join(params, "&")
}

// RunMigrations aplica las migraciones embebidas sobre db y devuelve la versión del esquema.
// No cierra db: el driver de migrate comparte la misma instancia.
func RunMigrations(db *sqlx.DB) (uint, error) {
	const op = "sqlite.RunMigrations"

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("%s: driver: %w", op, err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("%s: source: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("%s: up: %w", op, err)
	}
	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("%s: version: %w", op, err)
	}
	return version, nil
}

// OpenMemory abre una base en memoria ya migrada.
func OpenMemory(ctx context.Context) (*sqlx.DB, error) {
	db, err := Open(ctx, MemoryPath)
	if err != nil {
		return nil, err
	}
	if _, err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
