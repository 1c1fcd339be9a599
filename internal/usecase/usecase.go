package usecase

import (
	"context"

	"github.com/DRSN-tech/store-service/internal/domain"
)

type ProductUC interface {
	Create(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Query(ctx context.Context, req *QueryProductsReq) ([]domain.Product, error)
	Update(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}
