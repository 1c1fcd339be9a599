package usecase

import (
	"context"

	"github.com/DRSN-tech/store-service/internal/domain"
)

// ProductRepository: хранилище товаров. Отсутствующий документ возвращается как e.ErrProductNotFound,
// нарушение уникальности имени как e.ErrProductAlreadyExists.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	Find(ctx context.Context, priceRange domain.PriceRange) ([]domain.Product, error)
	Insert(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CacheRepository: кэш карточек товаров. Промах возвращается как (nil, nil).
type CacheRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}
