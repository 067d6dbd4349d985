package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/jhoicas/merch-stock/internal/application/dto"
	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/inventory"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

// ProductUseCase casos de uso de productos. El stock posterior a la creación se maneja vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un producto. El stock inicial no genera movimiento.
// La unicidad del SKU la garantiza la restricción de la base de datos, no una consulta previa.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := inventory.Text(in.Name)
	sku := inventory.Text(in.SKU)
	if name == "" || sku == "" {
		field := "name"
		if name != "" {
			field = "sku"
		}
		return nil, &domain.ValidationError{Field: field, Message: "name y sku son requeridos"}
	}

	product := &entity.Product{
		Name:      name,
		SKU:       sku,
		Stock:     inventory.InitialStock(in.Stock),
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if domain.IsConstraint(err, domain.ConstraintUnique, "sku") {
			return nil, &domain.ConflictError{Field: "sku", Value: sku}
		}
		return nil, err
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Resource: "producto", Key: strconv.FormatInt(id, 10)}
	}
	out := dto.FromProduct(product)
	return &out, nil
}

// List lista todos los productos, más nuevo primero.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromProduct(p))
	}
	return out, nil
}
