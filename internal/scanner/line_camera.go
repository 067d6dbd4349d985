package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineSource reparte líneas de texto (lector tipo teclado o stdin) a las cámaras abiertas sobre ella.
// Una sola fuente sirve a sesiones sucesivas sin perder líneas entre Stop y Start.
type LineSource struct {
	lines <-chan string
}

// NewLineSource usa lines como fuente; cerrar el canal agota las cámaras.
func NewLineSource(lines <-chan string) *LineSource {
	return &LineSource{lines: lines}
}

// ReadLines lee r línea a línea en un canal que se cierra al llegar a EOF o cancelar ctx.
func ReadLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Open abre una cámara de líneas; usable como Opener.
func (s *LineSource) Open(context.Context) (Camera, error) {
	return &lineCamera{lines: s.lines, closed: make(chan struct{})}, nil
}

type lineCamera struct {
	lines  <-chan string
	closed chan struct{}
	once   sync.Once
}

// ReadCode devuelve la próxima línea; línea en blanco es ErrNoCode.
func (c *lineCamera) ReadCode(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.closed:
		return "", ErrClosed
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		if strings.TrimSpace(line) == "" {
			return "", ErrNoCode
		}
		return line, nil
	}
}

func (c *lineCamera) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
