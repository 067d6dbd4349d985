// Package console es el estado y las acciones de la consola del operador: listas de
// productos y movimientos, formulario de alta y salida por escaneo.
package console

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/scanner"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// API operaciones remotas que usa la consola (implementada por client.Client).
type API interface {
	ListProducts(ctx context.Context) ([]dto.ProductResponse, error)
	ListMovements(ctx context.Context) ([]dto.MovementResponse, error)
	CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	Consume(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error)
	Restock(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error)
}

// Session sesión de escaneo vista por la consola (implementada por *scanner.Scanner).
type Session interface {
	Events() iter.Seq[scanner.Event]
	Current() (uint64, bool)
}

// Level severidad de un aviso.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice aviso para el operador. Los errores llevan el mensaje devuelto por el servidor.
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Form formulario de alta de producto.
type Form struct {
	Name  string
	SKU   string
	Stock int
}

// ScanSettings cantidad y motivo aplicados a cada código escaneado.
type ScanSettings struct {
	Qty    int
	Reason string
}

// Console estado local de la consola. Seguro para uso concurrente.
type Console struct {
	api      API
	session  Session
	log      *logger.Logger
	onNotice func(Notice)

	mu        sync.RWMutex
	products  []dto.ProductResponse
	movements []dto.MovementResponse
	form      Form
	settings  ScanSettings
}

// Option configura la consola.
type Option func(*Console)

// WithNoticeHandler recibe cada aviso publicado.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(c *Console) { c.onNotice = fn }
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Console) { c.log = log }
}

// New construye la consola. session puede ser nil si no hay escaneo.
func New(api API, session Session, settings ScanSettings, opts ...Option) *Console {
	c := &Console{api: api, session: session, log: logger.Nop(), onNotice: func(Notice) {}}
	c.settings = normalizeSettings(settings)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeSettings(s ScanSettings) ScanSettings {
	if s.Qty < 1 {
		s.Qty = 1
	}
	s.Reason = strings.TrimSpace(s.Reason)
	return s
}

// Refresh vuelve a pedir ambas listas completas.
func (c *Console) Refresh(ctx context.Context) error {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.fail("cargar productos", err)
		return err
	}
	movements, err := c.api.ListMovements(ctx)
	if err != nil {
		c.fail("cargar movimientos", err)
		return err
	}
	c.mu.Lock()
	c.products, c.movements = products, movements
	c.mu.Unlock()
	return nil
}

// Products copia de la lista local de productos.
func (c *Console) Products() []dto.ProductResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dto.ProductResponse(nil), c.products...)
}

// Movements copia de la lista local de movimientos.
func (c *Console) Movements() []dto.MovementResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]dto.MovementResponse(nil), c.movements...)
}

// Product busca por SKU en la lista local.
func (c *Console) Product(sku string) (dto.ProductResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.SKU == sku {
			return p, true
		}
	}
	return dto.ProductResponse{}, false
}

func (c *Console) SetForm(f Form) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

func (c *Console) Form() Form {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form
}

func (c *Console) SetScanSettings(s ScanSettings) {
	c.mu.Lock()
	c.settings = normalizeSettings(s)
	c.mu.Unlock()
}

func (c *Console) ScanSettings() ScanSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// SubmitForm crea el producto del formulario; si sale bien limpia el formulario y refresca.
func (c *Console) SubmitForm(ctx context.Context) (*dto.ProductResponse, error) {
	f := c.Form()
	out, err := c.api.CreateProduct(ctx, dto.CreateProductRequest{Name: f.Name, SKU: f.SKU, Stock: f.Stock})
	if err != nil {
		c.fail("crear producto", err)
		return nil, err
	}
	c.SetForm(Form{})
	c.notify(LevelInfo, "producto creado: "+out.SKU)
	return out, c.Refresh(ctx)
}

// Restock repone qty unidades del SKU y refresca.
func (c *Console) Restock(ctx context.Context, sku string, qty int) (*dto.ProductResponse, error) {
	out, err := c.api.Restock(ctx, dto.StockChangeRequest{SKU: sku, Qty: qty})
	if err != nil {
		c.fail("reponer", err)
		return nil, err
	}
	return out, c.Refresh(ctx)
}

// ScanToConsume registra la salida de un código escaneado con la cantidad y motivo elegidos.
// Si la sesión que lo produjo ya no está activa al llegar la respuesta, el resultado se descarta.
func (c *Console) ScanToConsume(ctx context.Context, ev scanner.Event) (*dto.ProductResponse, error) {
	settings := c.ScanSettings()
	out, err := c.api.Consume(ctx, dto.StockChangeRequest{SKU: ev.Code, Qty: settings.Qty, Reason: settings.Reason})
	if c.stale(ev) {
		c.log.Debug().Str("sku", ev.Code).Uint64("session", ev.Session).Msg("respuesta descartada: sesión terminada")
		return nil, ErrStale
	}
	if err != nil {
		c.fail(ev.Code, err)
		return nil, err
	}
	c.notify(LevelInfo, out.SKU+": quedan "+itoa(out.Stock))
	return out, c.Refresh(ctx)
}

// ErrStale la respuesta llegó después de detener o reiniciar la sesión de escaneo.
var ErrStale = errors.New("console: sesión de escaneo terminada")

func (c *Console) stale(ev scanner.Event) bool {
	if c.session == nil {
		return false
	}
	current, running := c.session.Current()
	return !running || current != ev.Session
}

// ScanLoop consume los eventos de la sesión activa hasta que termine o se cancele ctx.
func (c *Console) ScanLoop(ctx context.Context) {
	if c.session == nil {
		return
	}
	for ev := range c.session.Events() {
		if ctx.Err() != nil {
			return
		}
		_, _ = c.ScanToConsume(ctx, ev)
	}
}

func (c *Console) fail(action string, err error) {
	c.log.Warn().Err(err).Str("action", action).Msg("acción fallida")
	c.notify(LevelError, action+": "+err.Error())
}

func (c *Console) notify(level Level, msg string) {
	c.onNotice(Notice{Level: level, Message: msg, At: time.Now()})
}
