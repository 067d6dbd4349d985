// Package scanner mantiene la sesión de escaneo: abre la cámara, decodifica códigos y
// los entrega como una secuencia de eventos con ciclo de vida Start/Stop explícito.
package scanner

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/merch-stock/pkg/logger"
)

var (
	// ErrNoCode la cámara no encontró código en el cuadro; se ignora sin cortar la sesión.
	ErrNoCode = errors.New("scanner: no hay código en el cuadro")
	// ErrRunning Start sobre una sesión ya activa.
	ErrRunning = errors.New("scanner: la sesión ya está activa")
	// ErrClosed lectura sobre una cámara cerrada.
	ErrClosed = errors.New("scanner: cámara cerrada")
)

// DefaultPrefix marcador que las etiquetas anteponen al SKU.
const DefaultPrefix = "SKU:"

// Reintentos ante errores de lectura: espera creciente desde retryBase hasta retryCap;
// tras maxReadFailures errores seguidos la sesión termina y la cámara se cierra.
const (
	defaultRetryBase       = 100 * time.Millisecond
	retryCap               = 2 * time.Second
	defaultMaxReadFailures = 10
)

// Camera fuente de códigos decodificados. ReadCode bloquea hasta el próximo código,
// devuelve ErrNoCode si el cuadro no tenía código e io.EOF cuando la fuente se agotó.
type Camera interface {
	ReadCode(ctx context.Context) (string, error)
	Close() error
}

// Opener abre la cámara al iniciar cada sesión.
type Opener func(ctx context.Context) (Camera, error)

// Event código leído en una sesión. Session identifica la sesión que lo produjo.
type Event struct {
	Code    string // SKU sin prefijo
	Raw     string // payload tal cual se leyó
	Session uint64
	At      time.Time
}

// Scanner sesión de escaneo reiniciable. Seguro para uso concurrente.
type Scanner struct {
	open        Opener
	prefix      string
	log         *logger.Logger
	retryBase   time.Duration
	maxFailures int

	mu         sync.Mutex
	generation uint64
	session    *session
}

type session struct {
	id     uint64
	cam    Camera
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Option configura el Scanner.
type Option func(*Scanner)

// WithPrefix cambia el marcador a quitar de cada payload ("" no quita nada).
func WithPrefix(prefix string) Option {
	return func(s *Scanner) { s.prefix = prefix }
}

// WithLogger registra inicio, fin y errores de lectura.
func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) { s.log = log }
}

// WithReadRetry ajusta la espera inicial entre lecturas fallidas y cuántos fallos seguidos
// terminan la sesión. Valores <= 0 dejan los de por defecto.
func WithReadRetry(base time.Duration, maxFailures int) Option {
	return func(s *Scanner) {
		if base > 0 {
			s.retryBase = base
		}
		if maxFailures > 0 {
			s.maxFailures = maxFailures
		}
	}
}

// New construye el Scanner; la cámara no se abre hasta Start.
func New(open Opener, opts ...Option) *Scanner {
	s := &Scanner{
		open:        open,
		prefix:      DefaultPrefix,
		log:         logger.Nop(),
		retryBase:   defaultRetryBase,
		maxFailures: defaultMaxReadFailures,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StripPrefix quita espacios y el marcador prefix del payload.
func StripPrefix(payload, prefix string) string {
	payload = strings.TrimSpace(payload)
	if prefix != "" {
		payload = strings.TrimPrefix(payload, prefix)
	}
	return strings.TrimSpace(payload)
}

// Start abre la cámara e inicia una sesión nueva. Si algo falla la cámara queda cerrada.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return ErrRunning
	}

	cam, err := s.open(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = cam.Close()
		return err
	}

	s.generation++
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		id:     s.generation,
		cam:    cam,
		cancel: cancel,
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	s.session = sess
	go s.run(runCtx, sess)
	s.log.Info().Uint64("session", sess.id).Msg("escaneo iniciado")
	return nil
}

// Stop termina la sesión activa y libera la cámara. Sin sesión no hace nada.
func (s *Scanner) Stop() error {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	sess.cancel()
	<-sess.done
	s.log.Info().Uint64("session", sess.id).Msg("escaneo detenido")
	return sess.close()
}

// Running indica si hay una sesión activa.
func (s *Scanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Generation id de la última sesión iniciada.
func (s *Scanner) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Current id de la sesión activa y si existe.
func (s *Scanner) Current() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return 0, false
	}
	return s.session.id, true
}

// Events secuencia perezosa de los códigos de la sesión activa. Termina cuando la sesión
// se detiene o la cámara se agota; tras un nuevo Start se puede recorrer otra vez.
func (s *Scanner) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		s.mu.Lock()
		sess := s.session
		s.mu.Unlock()
		if sess == nil {
			return
		}
		for ev := range sess.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *Scanner) run(ctx context.Context, sess *session) {
	defer close(sess.done)
	defer close(sess.events)

	failures := 0
	for {
		raw, err := sess.cam.ReadCode(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, ErrNoCode):
			failures = 0
			continue
		case errors.Is(err, io.EOF), errors.Is(err, ErrClosed):
			s.finish(sess)
			return
		case err != nil:
			failures++
			if failures >= s.maxFailures {
				s.log.Error().Err(err).Uint64("session", sess.id).Int("failures", failures).Msg("cámara sin respuesta, sesión terminada")
				s.finish(sess)
				return
			}
			wait := s.backoff(failures)
			s.log.Warn().Err(err).Uint64("session", sess.id).Dur("retry_in", wait).Msg("lectura de cámara")
			if !sleep(ctx, wait) {
				return
			}
			continue
		}
		failures = 0

		code := StripPrefix(raw, s.prefix)
		if code == "" {
			continue
		}
		ev := Event{Code: code, Raw: raw, Session: sess.id, At: time.Now()}
		select {
		case sess.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// backoff espera antes del reintento n (1, 2, ...): se duplica hasta retryCap.
func (s *Scanner) backoff(n int) time.Duration {
	d := s.retryBase
	for i := 1; i < n && d < retryCap; i++ {
		d *= 2
	}
	return min(d, retryCap)
}

// sleep espera d o hasta que ctx termine; false si ctx terminó.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish cierra una sesión que terminó sola (fuente agotada o cámara sin respuesta).
func (s *Scanner) finish(sess *session) {
	s.mu.Lock()
	if s.session == sess {
		s.session = nil
	}
	s.mu.Unlock()
	if err := sess.close(); err != nil {
		s.log.Warn().Err(err).Msg("cerrar cámara")
	}
	s.log.Info().Uint64("session", sess.id).Msg("fuente de escaneo agotada")
}

func (sess *session) close() error {
	var err error
	sess.once.Do(func() { err = sess.cam.Close() })
	return err
}
