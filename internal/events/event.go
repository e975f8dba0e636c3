package events

import (
	"context"
	"errors"
	"time"

	"bistro/internal/models"

	"github.com/google/uuid"
)

// Type names an order lifecycle event. Each type is published to the queue
// of the same name.
type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderDeleted       Type = "order.deleted"
)

// Types lists every event type
var Types = []Type{OrderPlaced, OrderStatusChanged, OrderDeleted}

// Event is the message emitted after an order write succeeds
type Event struct {
	ID         string        `json:"eventId"`
	Type       Type          `json:"type"`
	OrderID    string        `json:"orderId"`
	Status     string        `json:"status,omitempty"`
	Order      *models.Order `json:"order,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewEvent builds an event for order. Deleted orders carry only their id.
func NewEvent(t Type, orderID string, order *models.Order) Event {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       t,
		OrderID:    orderID,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	}
	if order != nil {
		ev.Status = string(order.Status)
	}
	return ev
}

// WithoutCustomer returns a copy of ev whose order carries no customer
// contact details
func (ev Event) WithoutCustomer() Event {
	if ev.Order == nil {
		return ev
	}
	order := *ev.Order
	order.CustomerInfo = models.CustomerInfo{}
	ev.Order = &order
	return ev
}

// Publisher delivers order events
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher. All publishers are attempted;
// their errors are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
