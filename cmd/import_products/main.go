// import_products crea productos en bloque desde un CSV con columnas name,sku,stock.
// Usa la misma configuración de base de datos que la API (DB_DRIVER, DATABASE_URL, SQLITE_PATH).
//
// Uso: go run ./cmd/import_products [-encoding utf-8|iso-8859-1|windows-1252] productos.csv
// Los SKU duplicados se reportan y se omiten; el resto del archivo se sigue importando.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/application/usecase"
	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/infrastructure/storage"
	"github.com/jhoicas/merch-stock/pkg/config"
	"github.com/jhoicas/merch-stock/pkg/logger"
)

// bom marca de orden de bytes que algunas hojas de cálculo anteponen al exportar UTF-8.
const bom = "\ufeff"

type row struct {
	line  int
	name  string
	sku   string
	stock int
}

type summary struct {
	created    int
	duplicates int
	invalid    int
}

func main() {
	encoding := flag.String("encoding", "utf-8", "codificación del archivo: utf-8, iso-8859-1 o windows-1252")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: import_products [-encoding utf-8|iso-8859-1|windows-1252] productos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decodeReader(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	rows, err := readRows(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "import_products", Out: os.Stderr})

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar base de datos: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	sum := importRows(ctx, usecase.NewProductUseCase(store.Products), rows, os.Stdout)
	fmt.Printf("Importados %d productos (%d duplicados, %d inválidos)\n", sum.created, sum.duplicates, sum.invalid)
}

// decodeReader envuelve r con el decodificador de la codificación indicada.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación no soportada: %q", encoding)
}

// readRows lee el CSV; la primera fila se omite si es el encabezado name,sku[,stock].
// Stock vacío o no entero queda en 0.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []row
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && isHeader(rec) {
			continue
		}
		rw := row{line: line}
		if len(rec) > 0 {
			rw.name = strings.TrimPrefix(rec[0], bom)
		}
		if len(rec) > 1 {
			rw.sku = rec[1]
		}
		if len(rec) > 2 {
			if n, err := strconv.Atoi(strings.TrimSpace(rec[2])); err == nil {
				rw.stock = n
			}
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

func isHeader(rec []string) bool {
	return len(rec) >= 2 &&
		strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], bom)), "name") &&
		strings.EqualFold(strings.TrimSpace(rec[1]), "sku")
}

type creator interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
}

// importRows crea cada fila con el caso de uso; duplicados e inválidos se reportan y se omiten.
func importRows(ctx context.Context, uc creator, rows []row, out io.Writer) summary {
	var sum summary
	for _, rw := range rows {
		_, err := uc.Create(ctx, dto.CreateProductRequest{Name: rw.name, SKU: rw.sku, Stock: rw.stock})
		switch {
		case err == nil:
			sum.created++
		case errors.Is(err, domain.ErrConflict):
			sum.duplicates++
			fmt.Fprintf(out, "línea %d: sku duplicado %q, omitido\n", rw.line, strings.TrimSpace(rw.sku))
		case errors.Is(err, domain.ErrInvalidInput):
			sum.invalid++
			fmt.Fprintf(out, "línea %d: %v\n", rw.line, err)
		default:
			fmt.Fprintf(out, "línea %d: %v\n", rw.line, err)
			return sum
		}
	}
	return sum
}
