package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/launderly/launderly/internal/config"
	"github.com/launderly/launderly/internal/messaging"
	ordersvc "github.com/launderly/launderly/internal/service/order"
	"github.com/launderly/launderly/internal/worker"
)

var workerTracer = otel.Tracer("github.com/launderly/launderly/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler sets up a worker handler for order lifecycle events.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(attribute.String("order.event", event.Type))

		switch event.Type {
		case ordersvc.EventOrderCreated:
			logger.Info("order created",
				zap.String("id", event.ID),
				zap.String("orderNumber", event.OrderNumber),
				zap.String("customerId", event.CustomerID),
				zap.String("total", event.TotalAmount.String()),
			)
		case ordersvc.EventOrderPaid:
			logger.Info("order paid",
				zap.String("id", event.ID),
				zap.String("orderNumber", event.OrderNumber),
				zap.String("total", event.TotalAmount.String()),
			)
		default:
			logger.Warn("unknown order event", zap.String("type", event.Type))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
