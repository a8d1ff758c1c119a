package amqp

import (
	"errors"
	"testing"
	"time"

	"carteira/internal/core"
)

func TestTransactionEvent(t *testing.T) {
	tx := core.Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		Description: "Mercado",
		Amount:      core.Money{Cents: 4590},
		Type:        core.Expense,
		Date:        time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
	}

	e, err := TransactionEvent(TransactionCreated, tx)
	if err != nil {
		t.Fatalf("TransactionEvent() error = %v", err)
	}
	if e.ID == "" || e.Type != TransactionCreated || e.UserID != "user-1" || e.EntityID != "tx-1" {
		t.Fatalf("unexpected envelope: %+v", e)
	}

	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	decoded, err := EventFromJSON(body)
	if err != nil {
		t.Fatalf("EventFromJSON() error = %v", err)
	}

	var p TransactionPayload
	if err := decoded.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.AmountCents != 4590 || p.Category != core.DefaultCategory || p.Type != "expense" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestDeletedEventHasNoPayload(t *testing.T) {
	e, err := TransactionEvent(TransactionDeleted, core.Transaction{ID: "tx-9", UserID: "u"})
	if err != nil {
		t.Fatalf("TransactionEvent() error = %v", err)
	}
	if len(e.Payload) != 0 {
		t.Errorf("expected empty payload, got %s", e.Payload)
	}
	var p TransactionPayload
	if err := e.DecodePayload(&p); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestUserRegisteredEvent(t *testing.T) {
	e, err := UserRegisteredEvent(core.User{ID: "u1", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("UserRegisteredEvent() error = %v", err)
	}
	var p UserPayload
	if err := e.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.Email != "ana@example.com" || p.Name != "Ana" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestEventFromJSON_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed":    `{"type": 12}`,
		"missing type": `{"user_id": "u1"}`,
		"missing user": `{"type": "user.registered"}`,
	}
	for name, body := range cases {
		if _, err := EventFromJSON([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
