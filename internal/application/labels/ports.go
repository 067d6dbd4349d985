package labels

import "context"

// Label datos de una etiqueta imprimible.
type Label struct {
	Name    string
	SKU     string
	Payload string // contenido codificado en el QR (prefijo + SKU)
}

// CodeImageRenderer genera la imagen escaneable (PNG) de un payload.
type CodeImageRenderer interface {
	RenderPNG(payload string, size int) ([]byte, error)
}

// LabelSheetGenerator genera la hoja de etiquetas imprimible (PDF).
type LabelSheetGenerator interface {
	GenerateLabelSheet(ctx context.Context, labels []Label) ([]byte, error)
}
