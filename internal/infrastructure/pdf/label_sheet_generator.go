// Package pdf genera la hoja de etiquetas imprimible con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  [ QR ]            [ QR ]            [ QR ]                  │
//	│  Nombre / SKU      Nombre / SKU      Nombre / SKU            │
//	│  ...                                                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/merch-stock/internal/application/labels"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// labelsPerRow etiquetas por fila (grilla de 12 columnas).
const labelsPerRow = 3

// ── Generator ─────────────────────────────────────────────────────────────────

var _ labels.LabelSheetGenerator = (*MarotoLabelGenerator)(nil)

// MarotoLabelGenerator implementa labels.LabelSheetGenerator usando Maroto v2.
type MarotoLabelGenerator struct {
	title string
	now   func() time.Time
}

// NewMarotoLabelGenerator construye el generador; title encabeza cada hoja.
func NewMarotoLabelGenerator(title string) *MarotoLabelGenerator {
	if title == "" {
		title = "Etiquetas de inventario"
	}
	return &MarotoLabelGenerator{title: title, now: time.Now}
}

// GenerateLabelSheet genera el PDF y devuelve sus bytes.
func (g *MarotoLabelGenerator) GenerateLabelSheet(_ context.Context, list []labels.Label) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, g.now(), len(list)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(list) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin productos", props.Text{Size: 10, Align: align.Center, Color: colorGray, Top: 3}),
		)))
	}
	for _, chunk := range chunks(list, labelsPerRow) {
		m.AddRows(labelRows(chunk)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, at time.Time, count int) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d etiquetas", count), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

// labelRows: fila de códigos QR y fila con nombre y SKU debajo.
func labelRows(chunk []labels.Label) []core.Row {
	width := 12 / labelsPerRow
	codes := make([]core.Col, 0, labelsPerRow)
	captions := make([]core.Col, 0, labelsPerRow)
	for _, l := range chunk {
		codes = append(codes, col.New(width).Add(code.NewQr(l.Payload, props.Rect{
			Percent: 90,
			Center:  true,
		})))
		captions = append(captions, col.New(width).Add(
			text.New(l.Name, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1,
			}),
			text.New(l.SKU, props.Text{
				Size: 8, Align: align.Center, Top: 6, Color: colorGray,
			}),
		))
	}
	for len(codes) < labelsPerRow {
		codes = append(codes, col.New(width))
		captions = append(captions, col.New(width))
	}
	return []core.Row{
		row.New(4),
		row.New(45).Add(codes...),
		row.New(12).Add(captions...),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

// chunks divide list en grupos de max n etiquetas.
func chunks(list []labels.Label, n int) [][]labels.Label {
	var out [][]labels.Label
	for len(list) > n {
		out = append(out, list[:n])
		list = list[n:]
	}
	if len(list) > 0 {
		out = append(out, list)
	}
	return out
}
