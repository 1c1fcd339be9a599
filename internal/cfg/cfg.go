package cfg

import (
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http     *HTTPConfig
	Mongo    *MongoCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	OTel     *OTelCfg
	LogLevel string
}

type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type MongoCfg struct {
	URI            string // если задан, Host/Port/User/Password игнорируются
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	ConnectTimeout time.Duration
	ConnectRetries int
}

// RedisCfg. Пустой Addr отключает кэш.
type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

// KafkaCfg. Пустой список брокеров отключает публикацию событий.
type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// OTelCfg. Пустой Endpoint означает локальный провайдер без экспорта.
type OTelCfg struct {
	Endpoint    string
	ServiceName string
	Environment string
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	mongo, err := loadMongoCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Mongo:    mongo,
		Redis:    redis,
		Kafka:    kafka,
		OTel:     loadOTelCfg(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort            = "8080"
		defaultReadTimeout     = 5 * time.Second
		defaultWriteTimeout    = 10 * time.Second
		defaultIdleTimeout     = 60 * time.Second
		defaultShutdownTimeout = 10 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		log.Errorf(err, "invalid SHUTDOWN_TIMEOUT")
		return nil, err
	}

	return &HTTPConfig{
		Port:            port,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func loadMongoCfg(log logger.Logger) (*MongoCfg, error) {
	const (
		defaultHost           = "localhost"
		defaultPort           = "27017"
		defaultDBName         = "store"
		defaultConnectTimeout = 10 * time.Second
		defaultConnectRetries = 5
	)

	connectTimeout, err := parseDurationEnv("MONGO_CONNECT_TIMEOUT", defaultConnectTimeout)
	if err != nil {
		log.Errorf(err, "invalid MONGO_CONNECT_TIMEOUT")
		return nil, err
	}

	connectRetries, err := parseIntEnv("MONGO_CONNECT_RETRIES", defaultConnectRetries)
	if err != nil {
		log.Errorf(err, "invalid MONGO_CONNECT_RETRIES")
		return nil, e.Wrap("MONGO_CONNECT_RETRIES", err)
	}

	return &MongoCfg{
		URI:            getEnv("MONGO_URI"),
		Host:           getEnvOrDefault("MONGO_HOST", defaultHost),
		Port:           getEnvOrDefault("MONGO_PORT", defaultPort),
		User:           getEnv("MONGO_USER"),
		Password:       getEnv("MONGO_PASSWORD"),
		DBName:         getEnvOrDefault("MONGO_DB", defaultDBName),
		ConnectTimeout: connectTimeout,
		ConnectRetries: connectRetries,
	}, nil
}

// ConnectionURI собирает строку подключения из отдельных полей, если MONGO_URI не задан.
func (c *MongoCfg) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}

	u := url.URL{Scheme: "mongodb", Host: net.JoinHostPort(c.Host, c.Port)}
	// Учётные данные экранируются: в пароле допустимы '@', ':' и '/'
	if c.User != "" && c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	return u.String()
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, e.Wrap("REDIS_DB_ID", err)
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, e.Wrap("REDIS_MAX_RETRIES", err)
	}

	dialTimeout, err := parseDurationEnv("REDIS_DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("REDIS_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("REDIS_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnv("REDIS_ADDR"),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProductTTL:  productTTL,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "products.events"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	var brokers []string
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadOTelCfg() *OTelCfg {
	const (
		defaultServiceName = "store-api"
		defaultEnvironment = "development"
	)

	return &OTelCfg{
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		Environment: getEnvOrDefault("OTEL_ENVIRONMENT", defaultEnvironment),
	}
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
