package labels

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jhoicas/merch-stock/internal/domain"
	"github.com/jhoicas/merch-stock/internal/domain/entity"
	"github.com/jhoicas/merch-stock/internal/domain/repository"
)

// Límites del tamaño (px) de la imagen del código.
const (
	DefaultImageSize = 256
	MinImageSize     = 64
	MaxImageSize     = 1024
)

// LabelUseCase genera la imagen QR de cada producto y la hoja de etiquetas para imprimir.
type LabelUseCase struct {
	productRepo repository.ProductRepository
	renderer    CodeImageRenderer
	generator   LabelSheetGenerator
	prefix      string
}

// NewLabelUseCase construye el caso de uso. prefix se antepone al SKU en el QR.
func NewLabelUseCase(
	productRepo repository.ProductRepository,
	renderer CodeImageRenderer,
	generator LabelSheetGenerator,
	prefix string,
) *LabelUseCase {
	return &LabelUseCase{
		productRepo: productRepo,
		renderer:    renderer,
		generator:   generator,
		prefix:      prefix,
	}
}

// Payload devuelve el texto codificado en la etiqueta de un SKU.
func (uc *LabelUseCase) Payload(sku string) string {
	return uc.prefix + sku
}

// CodePNG genera el PNG del código del producto. size se acota a [MinImageSize, MaxImageSize].
func (uc *LabelUseCase) CodePNG(ctx context.Context, productID int64, size int) ([]byte, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.NotFoundError{Resource: "producto", Key: strconv.FormatInt(productID, 10)}
	}
	img, err := uc.renderer.RenderPNG(uc.Payload(product.SKU), clampSize(size))
	if err != nil {
		return nil, fmt.Errorf("labels: generar código: %w", err)
	}
	return img, nil
}

// Sheet genera el PDF con una etiqueta por producto. ids vacío = todos los productos.
// Un id inexistente es NotFoundError.
func (uc *LabelUseCase) Sheet(ctx context.Context, ids []int64) ([]byte, error) {
	var (
		products []*entity.Product
		err      error
	)
	if len(ids) == 0 {
		products, err = uc.productRepo.List(ctx)
	} else {
		products, err = uc.productRepo.ListByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		found := make(map[int64]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, &domain.NotFoundError{Resource: "producto", Key: strconv.FormatInt(id, 10)}
			}
		}
	}

	list := make([]Label, 0, len(products))
	for _, p := range products {
		list = append(list, Label{Name: p.Name, SKU: p.SKU, Payload: uc.Payload(p.SKU)})
	}
	doc, err := uc.generator.GenerateLabelSheet(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("labels: generar hoja: %w", err)
	}
	return doc, nil
}

func clampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultImageSize
	case size < MinImageSize:
		return MinImageSize
	case size > MaxImageSize:
		return MaxImageSize
	}
	return size
}
