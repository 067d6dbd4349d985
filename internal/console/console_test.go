package console_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/client"
	"github.com/jhoicas/merch-stock/internal/console"
	"github.com/jhoicas/merch-stock/internal/scanner"
)

// fakeAPI inventario en memoria con las mismas reglas que la API.
type fakeAPI struct {
	mu        sync.Mutex
	products  []dto.ProductResponse
	movements []dto.MovementResponse
	lists     int
	// beforeConsume se ejecuta antes de responder una salida (simula latencia).
	beforeConsume func()
}

func (a *fakeAPI) ListProducts(context.Context) ([]dto.ProductResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lists++
	return append([]dto.ProductResponse(nil), a.products...), nil
}

func (a *fakeAPI) ListMovements(context.Context) ([]dto.MovementResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]dto.MovementResponse(nil), a.movements...), nil
}

func (a *fakeAPI) CreateProduct(_ context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.products {
		if p.SKU == in.SKU {
			return nil, &client.APIError{Status: 409, Code: "DUPLICATE", Message: "sku ya existe"}
		}
	}
	stock, _ := in.Stock.(int)
	p := dto.ProductResponse{ID: int64(len(a.products) + 1), Name: in.Name, SKU: in.SKU, Stock: stock}
	a.products = append([]dto.ProductResponse{p}, a.products...)
	return &p, nil
}

func (a *fakeAPI) Consume(_ context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	if a.beforeConsume != nil {
		a.beforeConsume()
	}
	return a.move(in, -1)
}

func (a *fakeAPI) Restock(_ context.Context, in dto.StockChangeRequest) (*dto.ProductResponse, error) {
	return a.move(in, 1)
}

func (a *fakeAPI) move(in dto.StockChangeRequest, sign int) (*dto.ProductResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	qty, _ := in.Qty.(int)
	for i := range a.products {
		p := &a.products[i]
		if p.SKU != in.SKU {
			continue
		}
		if p.Stock+sign*qty < 0 {
			stock := p.Stock
			return nil, &client.APIError{Status: 409, Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente", Stock: &stock}
		}
		p.Stock += sign * qty
		a.movements = append([]dto.MovementResponse{{ProductID: p.ID, Delta: sign * qty, Reason: in.Reason, SKU: p.SKU, Name: p.Name}}, a.movements...)
		out := *p
		return &out, nil
	}
	return nil, &client.APIError{Status: 404, Code: "NOT_FOUND", Message: "producto no encontrado"}
}

// fakeSession sesión controlada por el test.
type fakeSession struct {
	mu      sync.Mutex
	current uint64
	running bool
	events  []scanner.Event
}

func (s *fakeSession) Events() iter.Seq[scanner.Event] {
	return func(yield func(scanner.Event) bool) {
		for _, ev := range s.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *fakeSession) Current() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.running
}

func (s *fakeSession) set(current uint64, running bool) {
	s.mu.Lock()
	s.current, s.running = current, running
	s.mu.Unlock()
}

type noticeLog struct {
	mu      sync.Mutex
	notices []console.Notice
}

func (n *noticeLog) add(v console.Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, v)
	n.mu.Unlock()
}

func (n *noticeLog) last() console.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return console.Notice{}
	}
	return n.notices[len(n.notices)-1]
}

func newConsole(api *fakeAPI, session console.Session) (*console.Console, *noticeLog) {
	notices := &noticeLog{}
	c := console.New(api, session, console.ScanSettings{Qty: 1, Reason: "sale"}, console.WithNoticeHandler(notices.add))
	return c, notices
}

func TestConsole_FormularioYRefresh(t *testing.T) {
	api := &fakeAPI{}
	c, notices := newConsole(api, nil)
	ctx := context.Background()

	c.SetForm(console.Form{Name: "T-Shirt", SKU: "TS-1", Stock: 10})
	_, err := c.SubmitForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, console.Form{}, c.Form(), "el formulario se limpia al crear")
	require.Len(t, c.Products(), 1)
	assert.Equal(t, console.LevelInfo, notices.last().Level)

	c.SetForm(console.Form{Name: "Otra", SKU: "TS-1"})
	_, err = c.SubmitForm(ctx)
	require.Error(t, err)
	assert.Equal(t, "TS-1", c.Form().SKU, "el formulario se conserva si falla")
	assert.Equal(t, console.LevelError, notices.last().Level)
	assert.Contains(t, notices.last().Message, "sku ya existe")
}

func TestConsole_ScanToConsume(t *testing.T) {
	api := &fakeAPI{}
	session := &fakeSession{}
	session.set(1, true)
	c, notices := newConsole(api, session)
	ctx := context.Background()

	_, err := api.CreateProduct(ctx, dto.CreateProductRequest{Name: "T-Shirt", SKU: "TS-1", Stock: 2})
	require.NoError(t, err)
	require.NoError(t, c.Refresh(ctx))
	listsBefore := api.lists

	c.SetScanSettings(console.ScanSettings{Qty: 2, Reason: "gift"})
	out, err := c.ScanToConsume(ctx, scanner.Event{Code: "TS-1", Session: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Stock)
	assert.Greater(t, api.lists, listsBefore, "tras una salida se refrescan las listas")
	p, ok := c.Product("TS-1")
	require.True(t, ok)
	assert.Equal(t, 0, p.Stock)
	require.Len(t, c.Movements(), 1)
	assert.Equal(t, "gift", c.Movements()[0].Reason)

	_, err = c.ScanToConsume(ctx, scanner.Event{Code: "TS-1", Session: 1})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, console.LevelError, notices.last().Level)
	assert.Contains(t, notices.last().Message, "stock insuficiente")

	_, err = c.ScanToConsume(ctx, scanner.Event{Code: "NOPE", Session: 1})
	require.Error(t, err)
	assert.Contains(t, notices.last().Message, "producto no encontrado")
}

func TestConsole_DescartaRespuestaDeSesionTerminada(t *testing.T) {
	session := &fakeSession{}
	session.set(1, true)
	api := &fakeAPI{}
	api.beforeConsume = func() { session.set(2, true) } // reinicio mientras la petición viaja
	c, notices := newConsole(api, session)
	ctx := context.Background()
	_, err := api.CreateProduct(ctx, dto.CreateProductRequest{Name: "Mug", SKU: "MUG", Stock: 5})
	require.NoError(t, err)

	_, err = c.ScanToConsume(ctx, scanner.Event{Code: "MUG", Session: 1})
	assert.ErrorIs(t, err, console.ErrStale)
	assert.Empty(t, c.Products(), "no se refresca con respuestas descartadas")
	assert.Equal(t, console.Notice{}, notices.last())

	api.beforeConsume = func() { session.set(2, false) } // detenida
	_, err = c.ScanToConsume(ctx, scanner.Event{Code: "MUG", Session: 2})
	assert.ErrorIs(t, err, console.ErrStale)
}

func TestConsole_ScanLoop(t *testing.T) {
	api := &fakeAPI{}
	session := &fakeSession{events: []scanner.Event{
		{Code: "CAP", Session: 3},
		{Code: "CAP", Session: 3},
	}}
	session.set(3, true)
	c, _ := newConsole(api, session)
	ctx := context.Background()
	_, err := api.CreateProduct(ctx, dto.CreateProductRequest{Name: "Cap", SKU: "CAP", Stock: 5})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		c.ScanLoop(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ScanLoop no terminó")
	}
	p, ok := c.Product("CAP")
	require.True(t, ok)
	assert.Equal(t, 3, p.Stock)
}

func TestConsole_RestockYTablas(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newConsole(api, nil)
	ctx := context.Background()
	_, err := api.CreateProduct(ctx, dto.CreateProductRequest{Name: "Pin", SKU: "PIN"})
	require.NoError(t, err)

	out, err := c.Restock(ctx, "PIN", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Stock)

	var buf bytes.Buffer
	require.NoError(t, console.WriteProducts(&buf, c))
	assert.Contains(t, buf.String(), "PIN")
	buf.Reset()
	require.NoError(t, console.WriteMovements(&buf, c))
	assert.Contains(t, buf.String(), "+4")

	_, err = c.Restock(ctx, "NOPE", 1)
	assert.True(t, errors.As(err, new(*client.APIError)))
}
