package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DRSN-tech/store-service/internal/cfg"
	"github.com/DRSN-tech/store-service/internal/domain"
	"github.com/DRSN-tech/store-service/internal/usecase"
	"github.com/DRSN-tech/store-service/pkg/e"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события об изменении товаров. Ключ сообщения: ID товара,
// поэтому события одного товара попадают в одну партицию.
type Producer struct {
	writer messageWriter
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("no kafka brokers configured"))
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s, messages: %d", err.Error(), len(messages))
			}
		},
	}

	return newProducer(writer, logger, cfg), nil
}

func newProducer(writer messageWriter, logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishProductEvent сериализует событие в JSON и отдаёт его асинхронному writer'у.
func (p *Producer) PublishProductEvent(ctx context.Context, event *usecase.ProductEvent) error {
	value, err := GetPayloadBytes(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProductID),
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

// Close дожидается отправки буферизованных сообщений.
func (p *Producer) Close(_ context.Context) error {
	return p.writer.Close()
}

type productEventMessage struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	ProductID  string          `json:"product_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Product    *productPayload `json:"product,omitempty"`
}

type productPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     string    `json:"price"`
	Status    bool      `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func GetPayloadBytes(event *usecase.ProductEvent) ([]byte, error) {
	return json.Marshal(&productEventMessage{
		EventID:    event.EventID,
		Type:       string(event.Type),
		ProductID:  event.ProductID,
		OccurredAt: event.OccurredAt,
		Product:    toProductPayload(event.Product),
	})
}

func toProductPayload(p *domain.Product) *productPayload {
	if p == nil {
		return nil
	}

	return &productPayload{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     domain.FormatPrice(p.Price),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
