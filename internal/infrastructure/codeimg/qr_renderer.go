// Package codeimg renderiza el código escaneable de un producto como PNG.
package codeimg

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"

	"github.com/jhoicas/merch-stock/internal/application/labels"
)

var _ labels.CodeImageRenderer = (*QRRenderer)(nil)

// QRRenderer genera códigos QR cuadrados (corrección de errores nivel M).
type QRRenderer struct {
	level qr.ErrorCorrectionLevel
}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{level: qr.M}
}

// RenderPNG codifica payload y escala el QR a size x size píxeles.
func (r *QRRenderer) RenderPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("codeimg: payload vacío")
	}
	code, err := qr.Encode(payload, r.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("codeimg: codificar: %w", err)
	}
	// Un QR no se puede escalar por debajo de su cantidad de módulos.
	if minSize := code.Bounds().Dx(); size < minSize {
		size = minSize
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("codeimg: escalar: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("codeimg: png: %w", err)
	}
	return buf.Bytes(), nil
}
