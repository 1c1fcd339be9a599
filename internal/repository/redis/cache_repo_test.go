package redis

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DRSN-tech/store-service/internal/cfg"
	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/pkg/clients"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
)

func newTestCache(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCfg := &cfg.RedisCfg{Addr: mr.Addr(), ProductTTL: time.Minute}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Client.Close() })

	return NewCacheRepo(client, redisCfg, logger.NewSlogLoggerWithWriter(io.Discard)), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	p := domain.NewProduct("Iphone 14 Pro Max", 10, decimal.RequireFromString("8.500"), true, now)

	if err := cache.SetProduct(ctx, p); err != nil {
		t.Fatalf("set: %v", err)
	}

	key := "product:" + p.ID
	if !mr.Exists(key) {
		t.Fatalf("expected key %s", key)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	got, err := cache.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != p.Name || domain.FormatPrice(got.Price) != "8.500" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected cached product %+v", got)
	}

	if err := cache.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("key must be removed")
	}
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	got, err := cache.GetProduct(context.Background(), "absent")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil) on miss, got (%v, %v)", got, err)
	}
}

func TestCacheDropsCorruptedEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	if err := mr.Set("product:broken", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := cache.GetProduct(context.Background(), "broken")
	if err != nil || got != nil {
		t.Fatalf("expected miss on corrupted entry, got (%v, %v)", got, err)
	}
	if mr.Exists("product:broken") {
		t.Fatalf("corrupted entry must be removed")
	}
}

func TestCacheDropsMismatchedEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	if err := mr.Set("product:a", `{"id":"b","name":"x","price":"1"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := cache.GetProduct(context.Background(), "a")
	if err != nil || got != nil {
		t.Fatalf("expected miss on id mismatch, got (%v, %v)", got, err)
	}
	if mr.Exists("product:a") {
		t.Fatalf("mismatched entry must be removed")
	}
}

func TestCacheUnavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	if _, err := cache.GetProduct(context.Background(), "a"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
