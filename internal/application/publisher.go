package application

import (
	"context"

	"github.com/stockledger/inventory-service/internal/domain"
	"github.com/stockledger/inventory-service/pkg/events"
	"github.com/stockledger/inventory-service/pkg/kafka"
	"github.com/stockledger/inventory-service/pkg/logging"
	"github.com/stockledger/inventory-service/pkg/metrics"
	"github.com/stockledger/inventory-service/pkg/resilience"
)

// EventPublisher publishes integration events
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *events.CloudEvent)
}

// KafkaEventPublisher publishes through Kafka behind a circuit breaker.
// Event delivery is best effort; failures are logged and counted but never
// fail the originating operation.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewKafkaEventPublisher creates a KafkaEventPublisher
func NewKafkaEventPublisher(producer *kafka.Producer, breaker *resilience.CircuitBreaker, m *metrics.Metrics, logger *logging.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		breaker:  breaker,
		metrics:  m,
		logger:   logger.WithComponent("event-publisher"),
	}
}

// Publish sends one event through the breaker
func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, event *events.CloudEvent) {
	err := p.breaker.Execute(func() error {
		return p.producer.PublishEvent(ctx, topic, event)
	})
	p.metrics.RecordKafkaPublish(topic, err)
	if err != nil {
		p.logger.Warn("failed to publish event",
			"topic", topic,
			"eventType", event.Type,
			"error", err.Error(),
		)
	}
}

// NoopPublisher discards events, used when Kafka is disabled
type NoopPublisher struct{}

// Publish discards the event
func (NoopPublisher) Publish(ctx context.Context, topic string, event *events.CloudEvent) {}

// publishItemEvents converts pulled domain events into integration events
func publishItemEvents(ctx context.Context, publisher EventPublisher, factory *events.Factory, m *metrics.Metrics, item *domain.InventoryItem) {
	for _, domainEvent := range item.PullEvents() {
		switch e := domainEvent.(type) {
		case domain.StockAdjustedEvent:
			publisher.Publish(ctx, kafka.Topics.InventoryEvents, factory.NewEvent(
				events.StockAdjusted,
				"item/"+e.ItemID,
				events.StockAdjustedData{
					ItemID:      e.ItemID,
					SKU:         e.SKU,
					BranchID:    e.BranchID,
					PreviousQty: e.PreviousQty,
					NewQty:      e.NewQty,
					Reason:      e.Reason,
				},
			))
		case domain.LowStockAlertEvent:
			m.RecordLowStockAlert(e.BranchID)
			publisher.Publish(ctx, kafka.Topics.InventoryEvents, factory.NewEvent(
				events.LowStockAlert,
				"item/"+e.ItemID,
				events.LowStockAlertData{
					ItemID:       e.ItemID,
					SKU:          e.SKU,
					ItemName:     e.ItemName,
					BranchID:     e.BranchID,
					Quantity:     e.Quantity,
					MinThreshold: e.MinThreshold,
				},
			))
		case domain.ItemRelocatedEvent:
			publisher.Publish(ctx, kafka.Topics.InventoryEvents, factory.NewEvent(
				events.ItemRelocated,
				"item/"+e.ItemID,
				map[string]string{
					"itemId":       e.ItemID,
					"sku":          e.SKU,
					"fromBranchId": e.FromBranchID,
					"toBranchId":   e.ToBranchID,
					"placement":    e.Placement,
				},
			))
		}
	}
}

func transactionEventData(txn *domain.Transaction) events.TransactionEventData {
	return events.TransactionEventData{
		TransactionID: txn.ID.String(),
		ItemID:        txn.ItemID,
		ItemName:      txn.ItemName,
		SKU:           txn.SKU,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		Quantity:      txn.Quantity,
		BranchID:      txn.BranchID,
		TargetBranch:  txn.TargetBranchID,
		Personnel:     txn.Personnel,
	}
}
