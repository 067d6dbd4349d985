// @title        Merch Stock API
// @version      1.0
// @description  API de stock de merchandising: productos, salidas por escaneo, reposiciones y libro de movimientos.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token> (solo con JWT_SECRET configurado)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"

	"github.com/jhoicas/merch-stock/docs"
	"github.com/jhoicas/merch-stock/internal/application/auth"
	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/internal/application/labels"
	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/internal/infrastructure/codeimg"
	"github.com/jhoicas/merch-stock/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/merch-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/merch-stock/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/merch-stock/internal/interfaces/http"
	"github.com/jhoicas/merch-stock/pkg/config"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("driver", cfg.DB.Driver).
		Bool("auth", cfg.JWT.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("conexión a la base de datos")
	}
	defer store.Close()

	m := metrics.New()
	productUC := usecase.NewProductUseCase(store.Products)
	stockUC := inventory.NewStockUseCase(store.Tx, store.Movements, m, log.Component("inventory"))
	labelUC := labels.NewLabelUseCase(
		store.Products,
		codeimg.NewQRRenderer(),
		infrapdf.NewMarotoLabelGenerator(cfg.App.Name),
		cfg.Labels.CodePrefix,
	)

	var authUC *auth.AuthUseCase
	if cfg.JWT.Enabled() {
		if cfg.Operator.PasswordHash == "" {
			log.Warn().Msg("JWT_SECRET definido sin OPERATOR_PASSWORD_HASH: ningún login será aceptado")
		}
		authUC = auth.NewAuthUseCase(
			auth.OperatorCredentials{Username: cfg.Operator.Username, PasswordHash: cfg.Operator.PasswordHash},
			auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
		)
	}

	app := httpRouter.NewApp(cfg.App.Name, log, m)

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "Merch Stock API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		StockUC:   stockUC,
		LabelUC:   labelUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
		Metrics:   m,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
