package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/store-service/internal/cfg"
	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/internal/repository/redis/converter"
	"github.com/DRSN-tech/store-service/pkg/clients"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает товар из кэша. Промах и битые записи возвращаются как (nil, nil).
func (r *CacheRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := r.productKey(id)

	val, err := r.client.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil // cache miss
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := r.unmarshalProductFromCache([]byte(val))
	if err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		r.drop(ctx, key)
		return nil, nil
	}

	if model.ID != id {
		r.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, model.ID)
		r.drop(ctx, key)
		return nil, nil
	}

	product, err := converter.ToDomain(model)
	if err != nil {
		r.logger.Warnf("Cached product is corrupted: %v", e.Wrap(whereami.WhereAmI(), err))
		r.drop(ctx, key)
		return nil, nil
	}

	return product, nil
}

// SetProduct кэширует товар с TTL из конфигурации.
func (r *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := r.marshalProductForCache(converter.ToRedisModel(product))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := r.client.Client.Set(ctx, r.productKey(product.ID), data, r.cfg.ProductTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteProduct удаляет товар из кэша по ID
func (r *CacheRepo) DeleteProduct(ctx context.Context, id string) error {
	if err := r.client.Client.Del(ctx, r.productKey(id)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *CacheRepo) drop(ctx context.Context, key string) {
	if err := r.client.Client.Del(ctx, key).Err(); err != nil {
		r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// marshalProductForCache сериализует продукт в JSON для кэша
func (r *CacheRepo) marshalProductForCache(model *converter.ProductRedisModel) ([]byte, error) {
	return json.Marshal(model)
}

// unmarshalProductFromCache десериализует JSON из кэша в модель продукта
func (r *CacheRepo) unmarshalProductFromCache(data []byte) (*converter.ProductRedisModel, error) {
	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// productKey возвращает Redis-ключ для одного продукта
func (r *CacheRepo) productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
