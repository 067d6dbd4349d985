package dto

import "github.com/jhoicas/merch-stock/internal/domain/entity"

// FromProduct convierte la entidad en su salida HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}

// FromMovementView convierte un movimiento listado; nota vacía sale como null.
func FromMovementView(m *entity.MovementView) MovementResponse {
	out := MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Delta:     m.Delta,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
		Name:      m.ProductName,
		SKU:       m.ProductSKU,
	}
	if m.Note != "" {
		note := m.Note
		out.Note = &note
	}
	return out
}
