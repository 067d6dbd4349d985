package dto

// ErrorResponse cuerpo de error HTTP. Stock solo viaja en respuestas de stock insuficiente.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Stock   *int   `json:"stock,omitempty"`
}

// HealthResponse cuerpo de GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok"`
}
