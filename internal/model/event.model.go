package model

import "time"

type EventType string

const (
	EventPaymentRequested     EventType = "payment.requested"
	EventPaymentStatusChanged EventType = "payment.status_changed"
	EventClientCreated        EventType = "client.created"
	EventClientDeleted        EventType = "client.deleted"
)

// Event is the JSON document published on the domain event stream.
type Event struct {
	ID         string        `json:"id"`
	Type       EventType     `json:"type"`
	ClientID   string        `json:"client_id"`
	PaymentID  string        `json:"payment_id,omitempty"`
	FromStatus PaymentStatus `json:"from_status,omitempty"`
	ToStatus   PaymentStatus `json:"to_status,omitempty"`
	Amount     float64       `json:"amount,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// PaymentEvent is one row of a payment's audit trail.
type PaymentEvent struct {
	ID         string        `json:"id"`
	EventID    string        `json:"event_id"`
	PaymentID  string        `json:"payment_id"`
	ClientID   string        `json:"client_id"`
	Type       EventType     `json:"type"`
	FromStatus PaymentStatus `json:"from_status,omitempty"`
	ToStatus   PaymentStatus `json:"to_status,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
