package inventory_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/internal/domain"
	domaininv "github.com/jhoicas/merch-stock/internal/domain/inventory"
	"github.com/jhoicas/merch-stock/internal/infrastructure/sqlite"
)

type fakeRecorder struct {
	mu       sync.Mutex
	moved    map[string]int
	rejected map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{moved: map[string]int{}, rejected: map[string]int{}}
}

func (r *fakeRecorder) StockMoved(kind string, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moved[kind] += qty
}

func (r *fakeRecorder) ConsumeRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[reason]++
}

type fixture struct {
	products *usecase.ProductUseCase
	stock    *inventory.StockUseCase
	recorder *fakeRecorder
}

func newFixture(t *testing.T, db *sqlx.DB) fixture {
	t.Helper()
	rec := newFakeRecorder()
	return fixture{
		products: usecase.NewProductUseCase(sqlite.NewProductRepository(db)),
		stock:    inventory.NewStockUseCase(sqlite.NewTxRunner(db), sqlite.NewMovementRepository(db), rec, nil),
		recorder: rec,
	}
}

func memoryFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlite.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newFixture(t, db)
}

func TestStockUseCase_FlujoCompleto(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "T-Shirt", SKU: "TS-1", Stock: float64(10)})
	require.NoError(t, err)

	out, err := f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 7, out.Stock)

	_, err = f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: float64(100)})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 7, ise.Stock)
	assert.Equal(t, 100, ise.Requested)

	out, err = f.stock.Restock(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: float64(5)})
	require.NoError(t, err)
	assert.Equal(t, 12, out.Stock)

	movs, err := f.stock.ListMovements(ctx, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, 5, movs[0].Delta)
	assert.Equal(t, "restock", movs[0].Reason)
	assert.Equal(t, -3, movs[1].Delta)
	assert.Equal(t, "delivery", movs[1].Reason)
	assert.Nil(t, movs[1].Note)
	assert.Equal(t, "T-Shirt", movs[1].Name)
	assert.Equal(t, "TS-1", movs[1].SKU)

	assert.Equal(t, 3, f.recorder.moved[inventory.KindConsume])
	assert.Equal(t, 5, f.recorder.moved[inventory.KindRestock])
	assert.Equal(t, 1, f.recorder.rejected["insufficient_stock"])
}

func TestStockUseCase_CantidadNormalizada(t *testing.T) {
	cases := []struct {
		name string
		qty  any
		want int
	}{
		{"ausente", nil, 1},
		{"cero", float64(0), 1},
		{"negativo", float64(-5), 1},
		{"fraccionario", 2.5, 1},
		{"texto", "abc", 1},
		{"entero", float64(4), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := memoryFixture(t)
			ctx := context.Background()
			_, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "Mug", SKU: "MUG", Stock: float64(10)})
			require.NoError(t, err)

			out, err := f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "MUG", Qty: tc.qty})
			require.NoError(t, err)
			assert.Equal(t, 10-tc.want, out.Stock)

			movs, err := f.stock.ListMovements(ctx, 10)
			require.NoError(t, err)
			require.Len(t, movs, 1)
			assert.Equal(t, -tc.want, movs[0].Delta)
		})
	}
}

func TestStockUseCase_CantidadFueraDeRango(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	created, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "T-Shirt", SKU: "TS-1", Stock: float64(5)})
	require.NoError(t, err)

	_, err = f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: float64(3_000_000_000)})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 5, ise.Stock)
	assert.Equal(t, domaininv.MaxQuantity, ise.Requested)

	out, err := f.stock.Restock(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: float64(3_000_000_000)})
	require.NoError(t, err)
	assert.Equal(t, 5+domaininv.MaxQuantity, out.Stock)

	got, err := f.products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5+domaininv.MaxQuantity, got.Stock)

	big, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "Mug", SKU: "MUG", Stock: float64(3_000_000_000)})
	require.NoError(t, err)
	assert.Equal(t, domaininv.MaxQuantity, big.Stock)
}

// Una serie mezclada de salidas y reposiciones deja stock = inicial + Σ deltas,
// con exactamente un movimiento por llamada exitosa.
func TestStockUseCase_SecuenciaAleatoria(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	const initial = 8
	created, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "Hoodie", SKU: "HD", Stock: float64(initial)})
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(42, 7))
	expected, succeeded := initial, 0
	for i := 0; i < 150; i++ {
		qty := rng.IntN(6) + 1
		if rng.IntN(2) == 0 {
			out, err := f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "HD", Qty: float64(qty)})
			if qty > expected {
				require.True(t, errors.Is(err, domain.ErrInsufficientStock), "paso %d: err = %v", i, err)
				continue
			}
			require.NoError(t, err, "paso %d", i)
			expected -= qty
			assert.Equal(t, expected, out.Stock, "paso %d", i)
		} else {
			out, err := f.stock.Restock(ctx, dto.StockChangeRequest{SKU: "HD", Qty: float64(qty)})
			require.NoError(t, err, "paso %d", i)
			expected += qty
			assert.Equal(t, expected, out.Stock, "paso %d", i)
		}
		succeeded++
	}

	got, err := f.products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, got.Stock)

	movs, err := f.stock.ListMovements(ctx, 0)
	require.NoError(t, err)
	require.Len(t, movs, succeeded)
	sum := 0
	for _, m := range movs {
		sum += m.Delta
	}
	assert.Equal(t, got.Stock, initial+sum)
}

func TestStockUseCase_MotivoYNota(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	_, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "Cap", SKU: "CAP", Stock: float64(2)})
	require.NoError(t, err)

	_, err = f.stock.Consume(ctx, dto.StockChangeRequest{SKU: " CAP ", Reason: " gift ", Note: " booth 3 "})
	require.NoError(t, err)
	_, err = f.stock.Restock(ctx, dto.StockChangeRequest{SKU: "CAP", Reason: "   "})
	require.NoError(t, err)

	movs, err := f.stock.ListMovements(ctx, 10)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "restock", movs[0].Reason)
	assert.Equal(t, "gift", movs[1].Reason)
	require.NotNil(t, movs[1].Note)
	assert.Equal(t, "booth 3", *movs[1].Note)
}

func TestStockUseCase_Errores(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()

	_, err := f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "  "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "err = %v", err)

	_, err = f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "NOPE"})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "err = %v", err)

	_, err = f.stock.Restock(ctx, dto.StockChangeRequest{SKU: "NOPE", Qty: float64(2)})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "err = %v", err)

	movs, err := f.stock.ListMovements(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
	assert.Equal(t, 1, f.recorder.rejected["not_found"])
}

func TestStockUseCase_RechazoNoCambiaEstado(t *testing.T) {
	f := memoryFixture(t)
	ctx := context.Background()
	created, err := f.products.Create(ctx, dto.CreateProductRequest{Name: "Pin", SKU: "PIN"})
	require.NoError(t, err)

	_, err = f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "PIN"})
	require.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := f.products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	movs, err := f.stock.ListMovements(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

// Con una base en disco varias conexiones compiten por el lock de escritura.
func TestStockUseCase_SalidasConcurrentes(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "stock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = sqlite.RunMigrations(db)
	require.NoError(t, err)
	f := newFixture(t, db)

	_, err = f.products.Create(ctx, dto.CreateProductRequest{Name: "Sticker", SKU: "ST", Stock: float64(5)})
	require.NoError(t, err)

	const workers = 20
	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.stock.Consume(ctx, dto.StockChangeRequest{SKU: "ST", Qty: float64(1)})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), ok.Load())
	assert.Equal(t, int32(workers-5), rejected.Load())

	list, err := f.products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].Stock)

	movs, err := f.stock.ListMovements(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 5)
}
