package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"carteira/internal/analytics"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/mail"
	"carteira/internal/report"

	"golang.org/x/sync/errgroup"
)

type StatementStore interface {
	ListUsers(ctx context.Context) ([]core.User, error)
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
}

const statementConcurrency = 4

// StatementJob e-mails every user a six-month report with the PDF attached.
type StatementJob struct {
	store  StatementStore
	mailer mail.Sender
	logger *log.Logger
	now    func() time.Time
}

func NewStatementJob(store StatementStore, mailer mail.Sender, logger *log.Logger) *StatementJob {
	return &StatementJob{
		store:  store,
		mailer: mailer,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// Run sends one statement per user. A failure for one user does not stop
// the others; all failures are returned joined.
func (j *StatementJob) Run(ctx context.Context) error {
	users, err := j.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
		sent int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statementConcurrency)
	for _, u := range users {
		g.Go(func() error {
			if err := j.sendOne(gctx, u); err != nil {
				j.logger.ErrorContext(gctx, "Statement failed", log.FieldUserID, u.ID, log.FieldError, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s: %w", u.ID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	j.logger.InfoContext(ctx, "Statement run finished", "users", len(users), "sent", sent, "failed", len(errs))
	return errors.Join(errs...)
}

func (j *StatementJob) sendOne(ctx context.Context, u core.User) error {
	txs, err := j.store.ListTransactions(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	r := report.Build(core.NewLedger(txs, nil), analytics.SixMonths, j.now())
	var buf bytes.Buffer
	if err := report.Write(&buf, r); err != nil {
		return err
	}

	msg, err := mail.Statement(u, r.Summary.Income, r.Summary.Expense, r.Summary.Balance,
		report.Filename(r.Period), buf.Bytes())
	if err != nil {
		return err
	}
	return j.mailer.Send(ctx, msg)
}
