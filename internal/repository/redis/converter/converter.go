package converter

import (
	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ToRedisModel переводит товар в модель кэша. Цена хранится строкой с исходным масштабом.
func ToRedisModel(p *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     domain.FormatPrice(p.Price),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToDomain(m *ProductRedisModel) (*domain.Product, error) {
	price, err := decimal.NewFromString(m.Price)
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
