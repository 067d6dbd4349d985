// Package client es el cliente HTTP de la API de stock usado por la consola del operador.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/merch-stock/internal/application/dto"
)

// DefaultTimeout tiempo máximo por petición si el contexto no trae deadline.
const DefaultTimeout = 10 * time.Second

// APIError respuesta de error de la API. Error() devuelve el mensaje del servidor.
type APIError struct {
	Status  int
	Code    string
	Message string
	Stock   *int // solo en stock insuficiente
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Client cliente de la API sobre el Agent de Fiber (fasthttp).
type Client struct {
	baseURL string
	http    *fiber.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option configura el cliente.
type Option func(*Client)

// WithTimeout cambia el timeout por petición.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithToken fija un Bearer Token ya emitido.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New construye el cliente para baseURL (p. ej. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fiber.Client{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login obtiene un token del operador y lo usa en las peticiones siguientes.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out dto.LoginResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/auth/login", dto.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return err
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	var out dto.HealthResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/health", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		return errors.New("client: api no disponible")
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Consume registra una salida. Stock insuficiente llega como *APIError con Stock.
func (c *Client) Consume(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/consume", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Restock(ctx context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, fiber.MethodPost, "/api/restock", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMovements(ctx context.Context) ([]dto.MovementResponse, error) {
	var out []dto.MovementResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/movements", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do ejecuta la petición y decodifica el cuerpo en out (2xx) o en *APIError.
// El Agent de Fiber no acepta contexto: se respeta su deadline como timeout.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	var agent *fiber.Agent
	url := c.baseURL + path
	switch method {
	case fiber.MethodPost:
		agent = c.http.Post(url)
	default:
		agent = c.http.Get(url)
	}
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	c.mu.RLock()
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	c.mu.RUnlock()
	if body != nil {
		agent.JSON(body)
	}

	status, data, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("client: %s %s: %w", method, path, errors.Join(errs...))
	}
	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		var eb dto.ErrorResponse
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Code, apiErr.Message, apiErr.Stock = eb.Code, eb.Message, eb.Stock
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decodificar %s: %w", path, err)
	}
	return nil
}
