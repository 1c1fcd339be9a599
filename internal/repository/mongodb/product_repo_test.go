package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const productsNS = "store.products"

var testTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func productDoc(t *testing.T, id, name, price string) bson.D {
	t.Helper()

	dec, err := primitive.ParseDecimal128(price)
	if err != nil {
		t.Fatalf("parse decimal: %v", err)
	}

	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "quantity", Value: 10},
		{Key: "price", Value: dec},
		{Key: "status", Value: true},
		{Key: "created_at", Value: testTime},
		{Key: "updated_at", Value: testTime},
	}
}

func TestProductRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			productDoc(mt.T, "5f1c9c2e-0d7f-4b55-9a43-3fbc6f1d2f5a", "Iphone 14 Pro Max", "8.500")))

		p, err := repo.FindByID(context.Background(), "5f1c9c2e-0d7f-4b55-9a43-3fbc6f1d2f5a")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if p.Name != "Iphone 14 Pro Max" || domain.FormatPrice(p.Price) != "8.500" {
			mt.Fatalf("unexpected product %+v", p)
		}
		if !p.CreatedAt.Equal(testTime) {
			mt.Fatalf("unexpected created_at %v", p.CreatedAt)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), "missing")
		if !errors.Is(err, e.ErrProductNotFound) {
			mt.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	mt.Run("find by name", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			productDoc(mt.T, "id-1", "Pixel", "1")))

		p, err := repo.FindByName(context.Background(), "Pixel")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if p.ID != "id-1" {
			mt.Fatalf("unexpected id %s", p.ID)
		}
	})

	mt.Run("find returns all documents", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch,
			productDoc(mt.T, "id-1", "a", "6500"),
			productDoc(mt.T, "id-2", "b", "7999.99"),
		))

		minPrice := decimal.NewFromInt(5000)
		maxPrice := decimal.NewFromInt(8000)
		products, err := repo.Find(context.Background(), domain.PriceRange{Min: &minPrice, Max: &maxPrice})
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if len(products) != 2 || products[1].Name != "b" {
			mt.Fatalf("unexpected products %+v", products)
		}
	})

	mt.Run("find empty", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		products, err := repo.Find(context.Background(), domain.PriceRange{})
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if products == nil || len(products) != 0 {
			mt.Fatalf("expected empty non-nil slice, got %#v", products)
		}
	})

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := domain.NewProduct("Pixel", 1, decimal.RequireFromString("8.500"), true, testTime)
		if err := repo.Insert(context.Background(), p); err != nil {
			mt.Fatalf("insert: %v", err)
		}
	})

	mt.Run("insert duplicate name", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: store.products index: uniq_product_name",
		}))

		p := domain.NewProduct("Pixel", 1, decimal.NewFromInt(1), true, testTime)
		err := repo.Insert(context.Background(), p)
		if !errors.Is(err, e.ErrProductAlreadyExists) {
			mt.Fatalf("expected ErrProductAlreadyExists, got %v", err)
		}
	})

	mt.Run("update returns document after", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: productDoc(mt.T, "id-1", "Pixel", "7.500"),
		}))

		price := decimal.RequireFromString("7.500")
		updatedAt := testTime.Add(time.Minute)
		p, err := repo.Update(context.Background(), "id-1", &domain.ProductPatch{Price: &price, UpdatedAt: &updatedAt})
		if err != nil {
			mt.Fatalf("update: %v", err)
		}
		if domain.FormatPrice(p.Price) != "7.500" {
			mt.Fatalf("unexpected price %s", p.Price)
		}
	})

	mt.Run("update not found", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		updatedAt := testTime
		_, err := repo.Update(context.Background(), "missing", &domain.ProductPatch{UpdatedAt: &updatedAt})
		if !errors.Is(err, e.ErrProductNotFound) {
			mt.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := repo.Delete(context.Background(), "id-1")
		if err != nil || !deleted {
			mt.Fatalf("first delete: deleted=%v err=%v", deleted, err)
		}

		deleted, err = repo.Delete(context.Background(), "id-1")
		if err != nil || deleted {
			mt.Fatalf("second delete: deleted=%v err=%v", deleted, err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewProductRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("ensure indexes: %v", err)
		}
	})
}

func TestPriceFilter(t *testing.T) {
	minPrice := decimal.NewFromInt(5000)
	maxPrice := decimal.NewFromInt(8000)

	filter, err := priceFilter(domain.PriceRange{Min: &minPrice, Max: &maxPrice})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	price, ok := filter["price"].(bson.M)
	if !ok {
		t.Fatalf("expected price sub-document, got %#v", filter)
	}
	if gt, ok := price["$gt"].(primitive.Decimal128); !ok || gt.String() != "5000" {
		t.Fatalf("unexpected $gt %#v", price["$gt"])
	}
	if lt, ok := price["$lt"].(primitive.Decimal128); !ok || lt.String() != "8000" {
		t.Fatalf("unexpected $lt %#v", price["$lt"])
	}

	empty, err := priceFilter(domain.PriceRange{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("no bounds must produce an empty filter, got %#v", empty)
	}
}

func TestPatchToSetSkipsNilFields(t *testing.T) {
	name := "Pixel"
	set, err := patchToSet(&domain.ProductPatch{Name: &name})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if len(set) != 1 || set["name"] != "Pixel" {
		t.Fatalf("unexpected $set %#v", set)
	}
}

func TestToDecimal128(t *testing.T) {
	cases := map[string]string{
		"8.500": "8.500",
		"1e40":  "1E+40",
		"0":     "0",
	}
	for in, want := range cases {
		got, err := toDecimal128(decimal.RequireFromString(in))
		if err != nil {
			t.Fatalf("toDecimal128(%s): %v", in, err)
		}
		if got.String() != want {
			t.Fatalf("toDecimal128(%s) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"1e7000", "0.1234567890123456789012345678901234567", "12345678901234567890123456789012345678"} {
		if _, err := toDecimal128(decimal.RequireFromString(in)); !errors.Is(err, e.ErrInvalidPrice) {
			t.Fatalf("toDecimal128(%s): expected ErrInvalidPrice, got %v", in, err)
		}
	}

	huge := decimal.RequireFromString("1e7000")
	if _, err := priceFilter(domain.PriceRange{Min: &huge}); !errors.Is(err, e.ErrInvalidPrice) {
		t.Fatalf("priceFilter: expected ErrInvalidPrice, got %v", err)
	}
}
