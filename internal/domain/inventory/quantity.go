package inventory

import (
	"encoding/json"
	"math"
	"strings"
)

// MaxQuantity mayor cantidad representable en una sola petición.
const MaxQuantity = math.MaxInt32

// Quantity normaliza la cantidad de una salida/reposición (servicio de dominio).
// Solo un número entero se respeta; ausente, null, texto o fraccionario cuentan como 1.
// El resultado queda entre 1 y MaxQuantity.
func Quantity(raw any) int {
	n, ok := integral(raw)
	if !ok {
		return 1
	}
	return max(n, 1)
}

// InitialStock normaliza el stock inicial al crear un producto: entero entre 0 y MaxQuantity, si no 0.
func InitialStock(raw any) int {
	n, ok := integral(raw)
	if !ok {
		return 0
	}
	return max(n, 0)
}

// Text recorta espacios; "" significa ausente.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// TextOr recorta s y devuelve def si queda vacío.
func TextOr(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}

func integral(raw any) (int, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// Fuera de rango se recorta a ±MaxQuantity.
	return int(max(min(f, MaxQuantity), -MaxQuantity)), true
}
