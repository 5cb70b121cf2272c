package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeReviewRecorded is emitted after a review has been committed.
	TypeReviewRecorded = "review.recorded"
	// TypePlanCreated is emitted after a study plan has been stored.
	TypePlanCreated = "plan.created"
)

// Event is a domain fact about one learner.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	LearnerID uuid.UUID       `json:"learner_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent builds an event with a JSON encoded payload. A nil payload is omitted.
func NewEvent(eventType string, learnerID uuid.UUID, payload any) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		LearnerID: learnerID,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ReviewRecorded is the payload of TypeReviewRecorded.
type ReviewRecorded struct {
	CardID uuid.UUID `json:"card_id"`
	Grade  string    `json:"grade"`
	Topic  string    `json:"topic"`
}

// EventHandler reacts to emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events to the registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
