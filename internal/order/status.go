package order

import (
	"fmt"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatuses is the fixed set accepted by the status update operation.
var ValidStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped},
	StatusShipped: {StatusDelivered},
}

func (s Status) Valid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses can only be left through a return flow.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

// Notifies reports whether entering s sends a customer notification.
func (s Status) Notifies() bool {
	return s == StatusPaid || s == StatusShipped || s == StatusDelivered
}

// CheckTransition validates moving an order from s to next. Terminal orders
// fail for every target, valid or not. A request for the current status of a
// non-terminal order is accepted as a no-op.
func (s Status) CheckTransition(next Status) error {
	if s.Terminal() {
		return s.terminalErr()
	}
	if !next.Valid() {
		return fmt.Errorf("%w: allowed %v", apperr.ErrInvalidStatus, ValidStatuses)
	}
	if next == s {
		return nil
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", apperr.ErrOrderCannotBeModified, s, next)
}

// CheckEditable validates changing header fields or items of an order.
func (s Status) CheckEditable() error {
	if s.Terminal() {
		return s.terminalErr()
	}
	if !s.Editable() {
		return fmt.Errorf("%w: order is %s", apperr.ErrOrderCannotBeModified, s)
	}
	return nil
}

func (s Status) terminalErr() error {
	if s == StatusDelivered {
		return apperr.ErrOrderDelivered
	}
	return apperr.ErrOrderCancelled
}

// Editable reports whether header fields and items may change.
func (s Status) Editable() bool { return s == StatusPending }

// Deletable reports whether the order or its items may be deleted.
func (s Status) Deletable() bool { return s == StatusPending || s == StatusCancelled }
