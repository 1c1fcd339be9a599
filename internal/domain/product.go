package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product описывает товар в хранилище
type Product struct {
	ID        string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Status    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct создаёт товар с новым UUID. Метки времени выставляются в now (UTC, точность до мс,
// как хранит документная БД).
func NewProduct(name string, quantity int, price decimal.Decimal, status bool, now time.Time) *Product {
	ts := Timestamp(now)

	return &Product{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		Status:    status,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// ProductPatch: частичное обновление товара. nil-поля не изменяются.
type ProductPatch struct {
	Name      *string
	Quantity  *int
	Price     *decimal.Decimal
	Status    *bool
	UpdatedAt *time.Time
}

// PriceRange задаёт строгие границы цены: Min < price < Max. nil-граница не применяется.
type PriceRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// FormatPrice печатает цену, сохраняя её масштаб ("8.500", а не "8.5").
func FormatPrice(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}

	return d.String()
}

// Цена хранится в БД как Decimal128.
const (
	maxPriceDigits   = 34
	maxPriceExponent = 6111
	minPriceExponent = -6176
)

// PriceFitsStorage сообщает, представима ли цена в Decimal128 без потери точности.
// Хвостовые нули переносятся в показатель, а избыток показателя можно занести в коэффициент нулями.
func PriceFitsStorage(d decimal.Decimal) bool {
	digits := strings.TrimPrefix(d.Coefficient().String(), "-")
	if digits == "0" {
		return true
	}

	trimmed := strings.TrimRight(digits, "0")
	exp := int(d.Exponent()) + len(digits) - len(trimmed)

	if len(trimmed) > maxPriceDigits || exp < minPriceExponent {
		return false
	}

	return exp+len(trimmed) <= maxPriceExponent+maxPriceDigits
}

// Timestamp приводит время к UTC с точностью до миллисекунд.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
