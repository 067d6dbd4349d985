package client_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/merch-stock/internal/application/auth"
	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/internal/client"
	"github.com/jhoicas/merch-stock/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/merch-stock/internal/interfaces/http"
)

const testSecret = "client-test-secret"

// startAPI levanta la API real sobre SQLite en memoria y devuelve su URL base.
func startAPI(t *testing.T, jwtSecret, passwordHash string) string {
	t.Helper()
	db, err := sqlite.OpenMemory(context.Background())
	require.NoError(t, err)

	deps := apphttp.RouterDeps{
		ProductUC: usecase.NewProductUseCase(sqlite.NewProductRepository(db)),
		StockUC:   inventory.NewStockUseCase(sqlite.NewTxRunner(db), sqlite.NewMovementRepository(db), nil, nil),
		JWTSecret: jwtSecret,
	}
	if jwtSecret != "" {
		deps.AuthUC = auth.NewAuthUseCase(
			auth.OperatorCredentials{Username: "operator", PasswordHash: passwordHash},
			auth.JWTConfig{Secret: jwtSecret, ExpMinutes: 5, Issuer: "test"},
		)
	}
	app := apphttp.NewApp("client-test", nil, nil)
	apphttp.Router(app, deps)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(time.Second)
		_ = db.Close()
	})
	return "http://" + ln.Addr().String()
}

func TestClient_Flujo(t *testing.T) {
	c := client.New(startAPI(t, "", "") + "/")
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.CreateProduct(ctx, dto.CreateProductRequest{Name: "T-Shirt", SKU: "TS-1", Stock: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, created.Stock)

	out, err := c.Consume(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: 3, Reason: "sale"})
	require.NoError(t, err)
	assert.Equal(t, 7, out.Stock)

	_, err = c.Consume(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: 100})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "err = %v", err)
	assert.Equal(t, 409, apiErr.Status)
	assert.Equal(t, apphttp.CodeInsufficientStock, apiErr.Code)
	require.NotNil(t, apiErr.Stock)
	assert.Equal(t, 7, *apiErr.Stock)
	assert.Equal(t, apiErr.Message, err.Error())

	out, err = c.Restock(ctx, dto.StockChangeRequest{SKU: "TS-1", Qty: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, out.Stock)

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12, products[0].Stock)

	movs, err := c.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "sale", movs[1].Reason)
}

func TestClient_Login(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	c := client.New(startAPI(t, testSecret, hash))
	ctx := context.Background()

	_, err = c.CreateProduct(ctx, dto.CreateProductRequest{Name: "Mug", SKU: "MUG"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)

	require.Error(t, c.Login(ctx, "operator", "mala"))
	require.NoError(t, c.Login(ctx, "operator", "s3cret"))

	_, err = c.CreateProduct(ctx, dto.CreateProductRequest{Name: "Mug", SKU: "MUG"})
	assert.NoError(t, err)
}

func TestClient_ContextoCancelado(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ServidorCaido(t *testing.T) {
	c := client.New("http://127.0.0.1:1", client.WithTimeout(500*time.Millisecond))
	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}
