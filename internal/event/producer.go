package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trovekart/storefront/internal/domain"
	pkgkafka "github.com/trovekart/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated = "storefront.cart.updated"
	TopicCartCleared = "storefront.cart.cleared"
	TopicOrderPlaced = "storefront.order.placed"
)

const (
	aggregateTypeCart  = "cart"
	aggregateTypeOrder = "order"
	source             = "storefront"
)

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID     string            `json:"user_id"`
	Items      []domain.LineItem `json:"items"`
	ItemCount  int               `json:"item_count"`
	GrandTotal int64             `json:"grand_total"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	UserID        string `json:"user_id"`
	OrderID       string `json:"order_id"`
	PaymentMethod string `json:"payment_method"`
	GrandTotal    int64  `json:"grand_total"`
	Status        string `json:"status"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// CartUpdated publishes a cart.updated event.
func (p *Producer) CartUpdated(ctx context.Context, cart *domain.Cart, totals domain.Totals) error {
	data := CartUpdatedData{
		UserID:     cart.UserID,
		Items:      cart.Items,
		ItemCount:  cart.ItemCount(),
		GrandTotal: totals.GrandTotal,
	}

	ev, err := pkgkafka.NewEvent(TopicCartUpdated, cart.UserID, aggregateTypeCart, source, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, ev); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", cart.UserID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return nil
}

// CartCleared publishes a cart.cleared event.
func (p *Producer) CartCleared(ctx context.Context, userID string) error {
	ev, err := pkgkafka.NewEvent(TopicCartCleared, userID, aggregateTypeCart, source, CartClearedData{UserID: userID})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, ev); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// OrderPlaced publishes an order.placed event.
func (p *Producer) OrderPlaced(ctx context.Context, data OrderPlacedData) error {
	ev, err := pkgkafka.NewEvent(TopicOrderPlaced, data.OrderID, aggregateTypeOrder, source, data)
	if err != nil {
		return fmt.Errorf("create order.placed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderPlaced, ev); err != nil {
		return fmt.Errorf("publish order.placed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", data.OrderID),
		slog.String("payment_method", data.PaymentMethod),
	)

	return nil
}
