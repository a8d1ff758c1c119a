package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carteira/internal/core"

	"github.com/google/uuid"
)

type EventType string

const (
	UserRegistered     EventType = "user.registered"
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID       string          `json:"id"`
	Type     EventType       `json:"type"`
	UserID   string          `json:"user_id"`
	EntityID string          `json:"entity_id,omitempty"`
	Occurred time.Time       `json:"occurred"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type UserPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TransactionPayload struct {
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Date        time.Time `json:"date"`
}

var ErrInvalidEvent = errors.New("invalid event")

// NewEvent builds an event with a fresh id; payload may be nil.
func NewEvent(typ EventType, userID, entityID string, payload any) (Event, error) {
	e := Event{
		ID:       uuid.NewString(),
		Type:     typ,
		UserID:   userID,
		EntityID: entityID,
		Occurred: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		e.Payload = raw
	}
	return e, nil
}

func UserRegisteredEvent(u core.User) (Event, error) {
	return NewEvent(UserRegistered, u.ID, u.ID, UserPayload{Email: u.Email, Name: u.Name})
}

func TransactionEvent(typ EventType, t core.Transaction) (Event, error) {
	if typ == TransactionDeleted {
		return NewEvent(typ, t.UserID, t.ID, nil)
	}
	return NewEvent(typ, t.UserID, t.ID, TransactionPayload{
		Description: t.Description,
		Category:    t.CategoryName(),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        t.Date,
	})
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects envelopes without a type or user.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.Type == "" || e.UserID == "" {
		return Event{}, ErrInvalidEvent
	}
	return e, nil
}

// DecodePayload unmarshals the payload into v.
func (e Event) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrInvalidEvent, e.Type)
	}
	return json.Unmarshal(e.Payload, v)
}
