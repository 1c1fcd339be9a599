package usecase

import "context"

type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event *ProductEvent) error
}
