package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/store-service/internal/cfg"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/jitter"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/jimlawless/whereami"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoClient struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoClient подключается к MongoDB и проверяет соединение пингом primary.
// Неудачные попытки повторяются с экспоненциальной задержкой (cfg.ConnectRetries раз).
func NewMongoClient(ctx context.Context, cfg *cfg.MongoCfg, log logger.Logger) (*MongoClient, error) {
	const (
		baseBackoff = 500 * time.Millisecond
		maxBackoff  = 10 * time.Second
	)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	backoff := jitter.Backoff{
		Attempts: cfg.ConnectRetries,
		Base:     baseBackoff,
		Max:      maxBackoff,
		Jitter:   jitter.DefaultJitter,
	}

	err = jitter.Retry(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	}, func(attempt int, err error, wait time.Duration) {
		log.Warnf("MongoDB ping failed (attempt %d/%d), retrying in %s: %v", attempt, cfg.ConnectRetries, wait, err)
	})
	if err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	log.Infof("Connected to MongoDB, database: %s", cfg.DBName)

	return &MongoClient{
		Client: client,
		DB:     client.Database(cfg.DBName),
	}, nil
}

func (m *MongoClient) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
