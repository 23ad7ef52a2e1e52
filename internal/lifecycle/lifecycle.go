// Package lifecycle models the delivery lifecycle of orders and
// reservations as an explicit state machine instead of an implicit set of
// endpoints.
package lifecycle

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPreparing  Status = "Preparing"
	StatusDispatched Status = "Dispatched"
	StatusDelivered  Status = "Delivered"
	StatusReleased   Status = "Released"
	StatusReceived   Status = "Received"
	StatusReturned   Status = "Returned"
	StatusCompleted  Status = "Completed"
)

var ErrIllegalTransition = errors.New("illegal status transition")

var orderNext = map[Status]map[Status]bool{
	StatusPreparing:  {StatusDispatched: true},
	StatusDispatched: {StatusDelivered: true},
	StatusDelivered:  {},
}

var reservationNext = map[Status]map[Status]bool{
	StatusPreparing:  {StatusDispatched: true},
	StatusDispatched: {StatusDelivered: true},
	StatusDelivered:  {StatusReleased: true, StatusReturned: true},
	StatusReleased:   {StatusReceived: true, StatusReturned: true},
	StatusReceived:   {StatusCompleted: true},
	StatusReturned:   {StatusCompleted: true},
	StatusCompleted:  {},
}

// CanTransitionOrder reports whether to is a legal successor of from for a
// one-time purchase order.
func CanTransitionOrder(from, to Status) bool {
	return orderNext[from][to]
}

// CanTransitionReservation reports whether to is a legal successor of from
// for a rental reservation.
func CanTransitionReservation(from, to Status) bool {
	return reservationNext[from][to]
}

// StepOrder validates the transition and returns the new status. When
// strict is false the check is skipped and the write-through behavior of
// the historical endpoints is kept.
func StepOrder(from, to Status, strict bool) (Status, error) {
	if strict && !CanTransitionOrder(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return to, nil
}

func StepReservation(from, to Status, strict bool) (Status, error) {
	if strict && !CanTransitionReservation(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return to, nil
}
