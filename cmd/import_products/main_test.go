package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/internal/domain/inventory"
	"github.com/jhoicas/merch-stock/internal/infrastructure/sqlite"
)

func TestReadRows_HeaderAndStock(t *testing.T) {
	in := "name,sku,stock\nT-Shirt,TS-1,10\nMug,MG-1,\nCap,CP-1,abc\n"
	rows, err := readRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, row{line: 2, name: "T-Shirt", sku: "TS-1", stock: 10}, rows[0])
	assert.Equal(t, 0, rows[1].stock)
	assert.Equal(t, 0, rows[2].stock)
}

func TestReadRows_WithoutHeader(t *testing.T) {
	rows, err := readRows(strings.NewReader("Sticker,ST-1,3\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ST-1", rows[0].sku)
	assert.Equal(t, 1, rows[0].line)
}

func TestDecodeReader_Latin1(t *testing.T) {
	// "Camiseta Niño" en ISO-8859-1: ñ = 0xF1
	raw := []byte("Camiseta Ni\xf1o,CN-1,2\n")
	r, err := decodeReader(bytes.NewReader(raw), "ISO-8859-1")
	require.NoError(t, err)

	rows, err := readRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Camiseta Niño", rows[0].name)
}

func TestDecodeReader_Unsupported(t *testing.T) {
	_, err := decodeReader(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}

func TestImportRows_SkipsDuplicatesAndInvalid(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	uc := usecase.NewProductUseCase(sqlite.NewProductRepository(db))
	rows := []row{
		{line: 2, name: "T-Shirt", sku: "TS-1", stock: 10},
		{line: 3, name: "Otra", sku: "TS-1", stock: 1},
		{line: 4, name: "", sku: "X-1"},
		{line: 5, name: "Mug", sku: "MG-1", stock: -2},
		{line: 6, name: "Poster", sku: "PO-1", stock: 3_000_000_000},
	}

	var out bytes.Buffer
	sum := importRows(ctx, uc, rows, &out)
	assert.Equal(t, summary{created: 3, duplicates: 1, invalid: 1}, sum)
	assert.Contains(t, out.String(), `línea 3: sku duplicado "TS-1"`)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "PO-1", list[0].SKU)
	assert.Equal(t, inventory.MaxQuantity, list[0].Stock) // recortado, no descartado
	assert.Equal(t, "MG-1", list[1].SKU)
	assert.Equal(t, 0, list[1].Stock) // stock negativo cuenta como 0
}
