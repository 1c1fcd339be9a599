package mongodb

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// productModel: документ коллекции products. Цена хранится как Decimal128,
// чтобы $gt/$lt сравнивали числа, а не строки.
type productModel struct {
	ID        string               `bson:"_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Status    bool                 `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func toProductModel(p *domain.Product) (*productModel, error) {
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}

	return &productModel{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     price,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func toDomainProduct(m *productModel) (*domain.Product, error) {
	price, err := decimal.NewFromString(m.Price.String())
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:        m.ID,
		Name:      m.Name,
		Quantity:  m.Quantity,
		Price:     price,
		Status:    m.Status,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

func toArrDomainProducts(models []productModel) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(models))
	for i := range models {
		p, err := toDomainProduct(&models[i])
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	return products, nil
}

// toDecimal128 переносит коэффициент и показатель как есть, поэтому масштаб цены сохраняется.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, ok := primitive.ParseDecimal128FromBigInt(d.Coefficient(), int(d.Exponent()))
	if !ok {
		return primitive.Decimal128{}, fmt.Errorf("%sE%d: %w", d.Coefficient().String(), d.Exponent(), e.ErrInvalidPrice)
	}

	return v, nil
}
