package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BookingEvent is the message published for every booking lifecycle change.
// It is intentionally self-contained so consumers never need to call back
// into the booking service to render a notification.
type BookingEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewBookingEvent(eventType string, payload map[string]interface{}) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one booking to the same partition so
// consumers see them in order.
func (e *BookingEvent) PartitionKey() string {
	if bookingID, ok := e.Payload["booking_id"].(string); ok && bookingID != "" {
		return bookingID
	}
	return e.ID
}
