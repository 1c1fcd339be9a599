package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductUseCase реализует CRUD-операции над товарами поверх документного хранилища.
// Кэш и публикатор событий опциональны (nil отключает).
type ProductUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	publisher   EventPublisher
	tracer      trace.Tracer
	logger      logger.Logger
	now         func() time.Time
}

func NewProductUC(
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	publisher EventPublisher,
	tracer trace.Tracer,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		publisher:   publisher,
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
	}
}

// Create регистрирует новый товар. Имя должно быть уникальным.
func (p *ProductUseCase) Create(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.Create"

	ctx, span := p.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("product.name", req.Name))

	if err := validateProductFields(&req.Name, &req.Quantity, &req.Price); err != nil {
		return nil, p.fail(span, op, err)
	}

	// Проверка имени до вставки; гонку закрывает уникальный индекс
	if err := p.ensureNameIsFree(ctx, req.Name, ""); err != nil {
		return nil, p.fail(span, op, err)
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}

	product := domain.NewProduct(req.Name, req.Quantity, req.Price, status, p.now())
	if err := p.productRepo.Insert(ctx, product); err != nil {
		return nil, p.fail(span, op, err)
	}

	span.SetAttributes(attribute.String("product.id", product.ID))
	p.logger.Infof("product created: id=%s name=%q", product.ID, product.Name)

	p.publish(ctx, NewProductEvent(ProductCreated, product.ID, product, p.now()))

	return product, nil
}

// Get возвращает товар по идентификатору, сначала заглядывая в кэш.
func (p *ProductUseCase) Get(ctx context.Context, id string) (*domain.Product, error) {
	const op = "ProductUseCase.Get"

	ctx, span := p.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	if err := validateProductID(id); err != nil {
		return nil, p.fail(span, op, err)
	}

	if p.cacheRepo != nil {
		cached, err := p.cacheRepo.GetProduct(ctx, id)
		if err != nil {
			p.logger.Warnf("Failed to read product from cache: %v", e.Wrap(op, err))
		} else if cached != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	product, err := p.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	if p.cacheRepo != nil {
		if err := p.cacheRepo.SetProduct(ctx, product); err != nil {
			p.logger.Warnf("Failed to cache product: %v", e.Wrap(op, err))
		}
	}

	return product, nil
}

// Query возвращает все товары, цена которых строго внутри заданных границ.
func (p *ProductUseCase) Query(ctx context.Context, req *QueryProductsReq) ([]domain.Product, error) {
	const op = "ProductUseCase.Query"

	ctx, span := p.tracer.Start(ctx, op)
	defer span.End()

	priceRange := domain.PriceRange{Min: req.MinPrice, Max: req.MaxPrice}
	if err := validatePriceRange(priceRange); err != nil {
		return nil, p.fail(span, op, err)
	}
	if priceRange.Min != nil {
		span.SetAttributes(attribute.String("filter.price_gt", priceRange.Min.String()))
	}
	if priceRange.Max != nil {
		span.SetAttributes(attribute.String("filter.price_lt", priceRange.Max.String()))
	}

	products, err := p.productRepo.Find(ctx, priceRange)
	if err != nil {
		return nil, p.fail(span, op, err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	return products, nil
}

// Update применяет частичное обновление. updated_at выставляется в текущее время, если не передан явно.
func (p *ProductUseCase) Update(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.Update"

	ctx, span := p.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("product.id", req.ID))

	if err := validateProductID(req.ID); err != nil {
		return nil, p.fail(span, op, err)
	}

	if err := validateProductFields(req.Name, req.Quantity, req.Price); err != nil {
		return nil, p.fail(span, op, err)
	}

	current, err := p.productRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	if req.Name != nil && *req.Name != current.Name {
		if err := p.ensureNameIsFree(ctx, *req.Name, req.ID); err != nil {
			return nil, p.fail(span, op, err)
		}
	}

	updatedAt := domain.Timestamp(p.now())
	if req.UpdatedAt != nil {
		updatedAt = domain.Timestamp(*req.UpdatedAt)
	}

	patch := &domain.ProductPatch{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    req.Status,
		UpdatedAt: &updatedAt,
	}

	updated, err := p.productRepo.Update(ctx, req.ID, patch)
	if err != nil {
		return nil, p.fail(span, op, err)
	}

	p.invalidate(ctx, op, req.ID)
	p.logger.Infof("product updated: id=%s", updated.ID)

	p.publish(ctx, NewProductEvent(ProductUpdated, updated.ID, updated, p.now()))

	return updated, nil
}

// Delete удаляет товар. Возвращает true, если документ действительно был удалён.
func (p *ProductUseCase) Delete(ctx context.Context, id string) (bool, error) {
	const op = "ProductUseCase.Delete"

	ctx, span := p.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	if err := validateProductID(id); err != nil {
		return false, p.fail(span, op, err)
	}

	if _, err := p.productRepo.FindByID(ctx, id); err != nil {
		return false, p.fail(span, op, err)
	}

	deleted, err := p.productRepo.Delete(ctx, id)
	if err != nil {
		return false, p.fail(span, op, err)
	}

	p.invalidate(ctx, op, id)

	if deleted {
		p.logger.Infof("product deleted: id=%s", id)
		p.publish(ctx, NewProductEvent(ProductDeleted, id, nil, p.now()))
	}

	return deleted, nil
}

// ensureNameIsFree проверяет, что имя не занято другим товаром (кроме selfID).
func (p *ProductUseCase) ensureNameIsFree(ctx context.Context, name, selfID string) error {
	existing, err := p.productRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return e.ErrProductAlreadyExists
	}

	return nil
}

// invalidate удаляет товар из кэша. Ошибки кэша только логируются.
func (p *ProductUseCase) invalidate(ctx context.Context, op, id string) {
	if p.cacheRepo == nil {
		return
	}

	if err := p.cacheRepo.DeleteProduct(ctx, id); err != nil {
		p.logger.Warnf("Failed to delete product from cache: %v", e.Wrap(op, err))
	}
}

// publish отправляет событие, не прерывая операцию при ошибке брокера.
func (p *ProductUseCase) publish(ctx context.Context, event *ProductEvent) {
	if p.publisher == nil {
		return
	}

	if err := p.publisher.PublishProductEvent(ctx, event); err != nil {
		p.logger.Warnf("Failed to publish %s event for product %s: %v", event.Type, event.ProductID, err)
	}
}

func (p *ProductUseCase) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return e.Wrap(op, err)
}

// validateProductID проверяет, что идентификатор является UUID.
func validateProductID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return e.ErrInvalidProductID
	}

	return nil
}

// validateProductFields проверяет переданные поля товара; nil-поля пропускаются.
func validateProductFields(name *string, quantity *int, price *decimal.Decimal) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return e.ErrProductNameRequired
	}

	if quantity != nil && *quantity < 0 {
		return e.ErrNegativeQuantity
	}

	if price != nil && price.IsNegative() {
		return e.ErrNegativePrice
	}

	if price != nil && !domain.PriceFitsStorage(*price) {
		return e.ErrInvalidPrice
	}

	return nil
}

// validatePriceRange отсекает границы, которые нельзя передать в хранилище.
func validatePriceRange(r domain.PriceRange) error {
	for _, bound := range []*decimal.Decimal{r.Min, r.Max} {
		if bound != nil && !domain.PriceFitsStorage(*bound) {
			return e.ErrInvalidPriceFilter
		}
	}

	return nil
}
