// Package notify carries customer notifications out of the order service.
// Enqueue never blocks the caller and its failure never undoes the change
// that triggered it.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/order"
)

const TypeOrderStatusChanged = "order.status_changed"

// ErrQueueFull is returned by Enqueue when the dispatcher cannot accept more
// events without blocking.
var ErrQueueFull = errors.New("notification queue full")

type Event struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	OrderID     int64        `json:"order_id"`
	OrderNumber string       `json:"order_number"`
	UserID      int64        `json:"user_id"`
	Status      order.Status `json:"status"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// StatusChanged builds the event sent when o entered its current status.
func StatusChanged(o *order.Order) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        TypeOrderStatusChanged,
		OrderID:     o.ID,
		OrderNumber: o.Number,
		UserID:      o.UserID,
		Status:      o.Status,
		OccurredAt:  time.Now().UTC(),
	}
}

type Dispatcher interface {
	Enqueue(ctx context.Context, ev Event) error
}

// LogDispatcher only logs events. Used when no broker is configured.
type LogDispatcher struct{ log *zap.Logger }

func NewLogDispatcher(log *zap.Logger) *LogDispatcher { return &LogDispatcher{log: log} }

func (d *LogDispatcher) Enqueue(_ context.Context, ev Event) error {
	d.log.Info("notification",
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.Int64("order_id", ev.OrderID),
		zap.Int64("user_id", ev.UserID),
		zap.String("status", string(ev.Status)),
	)
	return nil
}
