package mongodb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/jimlawless/whereami"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollectionName = "products"

type ProductRepo struct {
	collection *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{collection: db.Collection(productCollectionName)}
}

// EnsureIndexes создаёт уникальный индекс по имени и индекс по цене для выборок по диапазону.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_product_name"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("product_price"),
		},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

// Find возвращает товары с ценой строго внутри диапазона. Пустой результат: пустой срез.
func (r *ProductRepo) Find(ctx context.Context, priceRange domain.PriceRange) ([]domain.Product, error) {
	filter, err := priceFilter(priceRange)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer cursor.Close(ctx)

	var models []productModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products, err := toArrDomainProducts(models)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

func (r *ProductRepo) Insert(ctx context.Context, product *domain.Product) error {
	model, err := toProductModel(product)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := r.collection.InsertOne(ctx, model); err != nil {
		return e.Wrap(whereami.WhereAmI(), mapWriteError(err))
	}

	return nil
}

// Update применяет $set по заданным полям и возвращает документ после обновления.
func (r *ProductRepo) Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.Product, error) {
	set, err := patchToSet(patch)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// Пустой $set сервер отвергает
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var model productModel
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&model)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), mapWriteError(err))
	}

	product, err := toDomainProduct(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return product, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return res.DeletedCount > 0, nil
}

func (r *ProductRepo) findOne(ctx context.Context, filter bson.M) (*domain.Product, error) {
	var model productModel
	if err := r.collection.FindOne(ctx, filter).Decode(&model); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	product, err := toDomainProduct(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return product, nil
}

// priceFilter строит фильтр {"price": {"$gt": min, "$lt": max}}, опуская незаданные границы.
func priceFilter(priceRange domain.PriceRange) (bson.M, error) {
	price := bson.M{}

	if priceRange.Min != nil {
		v, err := toDecimal128(*priceRange.Min)
		if err != nil {
			return nil, err
		}
		price["$gt"] = v
	}

	if priceRange.Max != nil {
		v, err := toDecimal128(*priceRange.Max)
		if err != nil {
			return nil, err
		}
		price["$lt"] = v
	}

	if len(price) == 0 {
		return bson.M{}, nil
	}

	return bson.M{"price": price}, nil
}

// patchToSet переводит патч в документ $set; nil-поля пропускаются.
func patchToSet(patch *domain.ProductPatch) (bson.M, error) {
	set := bson.M{}

	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.Price != nil {
		v, err := toDecimal128(*patch.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = v
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.UpdatedAt != nil {
		set["updated_at"] = patch.UpdatedAt.UTC()
	}

	return set, nil
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return e.ErrProductAlreadyExists
	}

	return err
}
