// Package worker holds the background side of the application: event
// handlers fed by the AMQP consumer and the scheduled statement job.
package worker

import (
	"context"
	"errors"
	"fmt"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/mail"
	"carteira/internal/sheets"
)

type UserReader interface {
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

// EventHandler reacts to domain events. A nil mirror disables the sheet copy.
type EventHandler struct {
	users  UserReader
	mailer mail.Sender
	mirror sheets.TransactionMirror
	logger *log.Logger
}

func NewEventHandler(users UserReader, mailer mail.Sender, mirror sheets.TransactionMirror, logger *log.Logger) *EventHandler {
	return &EventHandler{
		users:  users,
		mailer: mailer,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle dispatches on the event type. Returning an error requeues the event.
func (h *EventHandler) Handle(ctx context.Context, e amqp.Event) error {
	switch e.Type {
	case amqp.UserRegistered:
		return h.welcome(ctx, e)
	case amqp.TransactionCreated:
		return h.mirrorTransaction(ctx, e)
	case amqp.TransactionUpdated, amqp.TransactionDeleted:
		h.logger.DebugContext(ctx, "Event acknowledged without action",
			log.FieldEventType, e.Type, log.FieldTransactionID, e.EntityID)
		return nil
	default:
		h.logger.WarnContext(ctx, "Unknown event type", log.FieldEventType, e.Type)
		return nil
	}
}

func (h *EventHandler) welcome(ctx context.Context, e amqp.Event) error {
	u, err := h.users.GetUserByID(ctx, e.UserID)
	if errors.Is(err, core.ErrNotFound) {
		h.logger.WarnContext(ctx, "Welcome skipped, user no longer exists", log.FieldUserID, e.UserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	msg, err := mail.Welcome(u)
	if err != nil {
		return err
	}
	if err := h.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	h.logger.InfoContext(ctx, "Welcome mail sent", log.FieldUserID, u.ID)
	return nil
}

func (h *EventHandler) mirrorTransaction(ctx context.Context, e amqp.Event) error {
	if h.mirror == nil {
		return nil
	}

	var p amqp.TransactionPayload
	if err := e.DecodePayload(&p); err != nil {
		// Retrying will not fix a bad payload.
		h.logger.ErrorContext(ctx, "Dropping transaction event with bad payload",
			log.FieldTransactionID, e.EntityID, log.FieldError, err)
		return nil
	}

	owner := e.UserID
	if u, err := h.users.GetUserByID(ctx, e.UserID); err == nil {
		owner = u.Email
	}

	t := core.Transaction{
		ID:          e.EntityID,
		UserID:      e.UserID,
		Description: p.Description,
		Category:    p.Category,
		Amount:      core.Money{Cents: p.AmountCents},
		Type:        core.TransactionType(p.Type),
		Date:        p.Date,
	}
	ref, err := h.mirror.AppendTransaction(ctx, owner, t)
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", e.EntityID, err)
	}
	h.logger.InfoContext(ctx, "Transaction mirrored",
		log.FieldTransactionID, e.EntityID, "row_ref", ref)
	return nil
}
