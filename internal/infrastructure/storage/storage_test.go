package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/infrastructure/storage"
	"github.com/jhoicas/merch-stock/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "stock.db"), Migrate: true}

	store, err := storage.Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, config.DriverSQLite, store.Driver)

	require.NoError(t, store.Products.Create(ctx, &entity.Product{Name: "Mug", SKU: "MUG", CreatedAt: time.Now()}))
	list, err := store.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpen_SQLiteMemoriaSiempreMigra(t *testing.T) {
	store, err := storage.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	defer store.Close()

	list, err := store.Products.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpen_DriverInvalido(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DBConfig{Driver: "mongo"}, nil)
	assert.Error(t, err)
}
