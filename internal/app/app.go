package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/store-service/internal/cfg"
	v1Http "github.com/DRSN-tech/store-service/internal/delivery/v1/http"
	"github.com/DRSN-tech/store-service/internal/infrastructure/kafka"
	"github.com/DRSN-tech/store-service/internal/repository/mongodb"
	"github.com/DRSN-tech/store-service/internal/repository/redis"
	"github.com/DRSN-tech/store-service/internal/usecase"
	"github.com/DRSN-tech/store-service/pkg/clients"
	"github.com/DRSN-tech/store-service/pkg/closer"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/DRSN-tech/store-service/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	initTimeout       = 30 * time.Second
	kafkaTopicTimeout = 10 * time.Second
)

type App struct {
	cfg    *config.Config
	log    *logger.SlogLogger
	closer *closer.Closer
	server *v1Http.Server
}

// NewApp поднимает все зависимости. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log *logger.SlogLogger) (*App, error) {
	if !log.SetLevel(cfg.LogLevel) {
		log.Warnf("unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		closer: closer.NewCloser(0),
	}

	if err := a.init(); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		if closeErr := a.closer.Close(shutdownCtx); closeErr != nil {
			log.Errorf(closeErr, "failed to release resources after init error")
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	tp, err := telemetry.NewProvider(ctx, a.cfg.OTel)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("telemetry", tp.Shutdown)
	if tp.Exporting() {
		a.log.Infof("Exporting traces to %s", a.cfg.OTel.Endpoint)
	}

	mongoClient, err := clients.NewMongoClient(ctx, a.cfg.Mongo, a.log)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("mongodb", mongoClient.Close)

	productRepo := mongodb.NewProductRepo(mongoClient.DB)
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	// Интерфейсные переменные: nil-указатель в интерфейсе не считается nil
	var cacheRepo usecase.CacheRepository
	if a.cfg.Redis.Addr != "" {
		redisClient := clients.NewRedisClient(a.cfg.Redis)
		if err := redisClient.Ping(ctx); err != nil {
			_ = redisClient.Close(ctx)
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.Add("redis", redisClient.Close)
		cacheRepo = redis.NewCacheRepo(redisClient, a.cfg.Redis, a.log)
	} else {
		a.log.Infof("REDIS_ADDR is not set, product cache disabled")
	}

	var publisher usecase.EventPublisher
	if len(a.cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(a.log, a.cfg.Kafka)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.Add("kafka", producer.Close)

		if err := producer.EnsureTopic(kafkaTopicTimeout); err != nil {
			a.log.Errorf(err, "failed to ensure kafka topic %s", a.cfg.Kafka.Topic)
		}
		publisher = producer
	} else {
		a.log.Infof("KAFKA_BROKERS is not set, product events disabled")
	}

	productUC := usecase.NewProductUC(productRepo, cacheRepo, publisher, tp.Tracer(), a.log)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.log, a.log.Slog()).Init(productUC)

	a.server = v1Http.NewServer(otelhttp.NewHandler(r, a.cfg.OTel.ServiceName), a.cfg.Http)
	// Добавляется последним, чтобы закрыться первым
	a.closer.Add("http server", a.server.Stop)

	return nil
}

// Run блокируется до сигнала остановки или падения HTTP-сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server started on %s", a.server.Addr())
		if err := a.server.Run(); err != nil {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.log.Errorf(appErr, "HTTP server fatal error")
	case sig := <-shutdown:
		a.log.Infof("Received %s, stopping gracefully...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Http.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.log.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	a.log.Infof("Application shutdown complete")
	return appErr
}
