package http

import (
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/merch-stock/internal/application/auth"
	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/inventory"
	"github.com/jhoicas/merch-stock/internal/application/labels"
	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// MetricsExporter métricas HTTP más el handler de exposición (/metrics).
type MetricsExporter interface {
	HTTPObserver
	Handler() nethttp.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	StockUC   *inventory.StockUseCase
	LabelUC   *labels.LabelUseCase
	AuthUC    *auth.AuthUseCase // nil = sin login
	JWTSecret string            // vacío = rutas de escritura sin autenticación
	Metrics   MetricsExporter   // opcional
	Log       *logger.Logger
}

// NewApp construye la aplicación Fiber con recover, request log y el ErrorHandler de la API.
func NewApp(appName string, log *logger.Logger, observer HTTPObserver) *fiber.App {
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(RequestLogger(log.Component("http"), observer))
	app.Use(recover.New())
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{OK: true})
	})

	// Auth (público)
	if deps.AuthUC != nil {
		authHandler := NewAuthHandler(deps.AuthUC, log)
		api.Post("/auth/login", authHandler.Login)
	}

	// Escrituras: Bearer Token solo si JWT_SECRET está configurado
	requireOperator := AuthMiddleware(deps.JWTSecret)

	productHandler := NewProductHandler(deps.ProductUC, log)
	api.Get("/products", productHandler.List)
	api.Post("/products", requireOperator, productHandler.Create)
	api.Get("/products/:id", productHandler.GetByID)

	inventoryHandler := NewInventoryHandler(deps.StockUC, log)
	api.Post("/consume", requireOperator, inventoryHandler.Consume)
	api.Post("/restock", requireOperator, inventoryHandler.Restock)
	api.Get("/movements", inventoryHandler.ListMovements)

	if deps.LabelUC != nil {
		labelHandler := NewLabelHandler(deps.LabelUC, log)
		api.Get("/products/:id/code.png", labelHandler.CodePNG)
		api.Get("/labels.pdf", labelHandler.Sheet)
	}
}
