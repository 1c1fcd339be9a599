package usecase

import (
	"time"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PRODUCT USECASE

// CreateProductReq — запрос на создание товара. Status по умолчанию true.
type CreateProductReq struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Status   *bool
}

// UpdateProductReq — частичное обновление товара по идентификатору.
type UpdateProductReq struct {
	ID        string
	Name      *string
	Quantity  *int
	Price     *decimal.Decimal
	Status    *bool
	UpdatedAt *time.Time
}

// QueryProductsReq — фильтр выборки по цене (строгие границы).
type QueryProductsReq struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// INFRASTRUCTURE

type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent — событие об изменении товара. Для удаления Product равен nil.
type ProductEvent struct {
	EventID    string
	Type       ProductEventType
	ProductID  string
	Product    *domain.Product
	OccurredAt time.Time
}

// MAPPERS

func NewCreateProductReq(name string, quantity int, price decimal.Decimal, status *bool) *CreateProductReq {
	return &CreateProductReq{
		Name:     name,
		Quantity: quantity,
		Price:    price,
		Status:   status,
	}
}

func NewQueryProductsReq(minPrice, maxPrice *decimal.Decimal) *QueryProductsReq {
	return &QueryProductsReq{
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}
}

func NewProductEvent(eventType ProductEventType, productID string, product *domain.Product, now time.Time) *ProductEvent {
	return &ProductEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: domain.Timestamp(now),
	}
}
