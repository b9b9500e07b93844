package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionCreated = "transaction.created"
	EventAlertCreated       = "alert.created"
)

// Event is the envelope published for domain events. It carries only
// identifiers; consumers fetch the full records from the database.
type Event struct {
	Kind      string    `json:"kind"`
	OwnerID   int64     `json:"owner_id"`
	EntityID  int64     `json:"entity_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedEvent(ownerID, transactionID int64) *Event {
	return &Event{
		Kind:      EventTransactionCreated,
		OwnerID:   ownerID,
		EntityID:  transactionID,
		Timestamp: time.Now(),
	}
}

func NewAlertCreatedEvent(ownerID, alertID int64) *Event {
	return &Event{
		Kind:      EventAlertCreated,
		OwnerID:   ownerID,
		EntityID:  alertID,
		Timestamp: time.Now(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
