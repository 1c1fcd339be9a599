package http

import (
	"time"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/internal/usecase"
	"github.com/shopspring/decimal"
)

// CreateProductRequest: тело POST /products. Цена принимается числом или строкой.
type CreateProductRequest struct {
	Name     string           `json:"name" validate:"required,max=255" example:"Iphone 14 Pro Max"`
	Quantity *int             `json:"quantity" validate:"required" example:"10"`
	Price    *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"8.500"`
	Status   *bool            `json:"status" example:"true"`
}

func (r *CreateProductRequest) toUseCase() *usecase.CreateProductReq {
	return usecase.NewCreateProductReq(r.Name, *r.Quantity, *r.Price, r.Status)
}

// UpdateProductRequest: тело PATCH /products/{id}. Передаются только изменяемые поля.
type UpdateProductRequest struct {
	Name      *string          `json:"name" validate:"omitempty,max=255" example:"Iphone 14 Pro Max"`
	Quantity  *int             `json:"quantity" example:"5"`
	Price     *decimal.Decimal `json:"price" swaggertype:"string" example:"7.500"`
	Status    *bool            `json:"status" example:"false"`
	UpdatedAt *time.Time       `json:"updated_at"`
}

func (r *UpdateProductRequest) toUseCase(id string) *usecase.UpdateProductReq {
	return &usecase.UpdateProductReq{
		ID:        id,
		Name:      r.Name,
		Quantity:  r.Quantity,
		Price:     r.Price,
		Status:    r.Status,
		UpdatedAt: r.UpdatedAt,
	}
}

type ProductResponse struct {
	ID        string    `json:"id" example:"5f1c9c2e-0d7f-4b55-9a43-3fbc6f1d2f5a"`
	Name      string    `json:"name" example:"Iphone 14 Pro Max"`
	Quantity  int       `json:"quantity" example:"10"`
	Price     string    `json:"price" example:"8.500"`
	Status    bool      `json:"status" example:"true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     domain.FormatPrice(p.Price),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func newProductsResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, *newProductResponse(&products[i]))
	}

	return res
}
