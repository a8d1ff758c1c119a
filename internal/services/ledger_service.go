package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/notify"

	"golang.org/x/sync/errgroup"
)

const (
	snapshotTTL      = 30 * time.Minute
	maxSnapshotUsers = 1000
	lockStripes      = 64
)

// LedgerService is the shared data-access context for transactions and
// categories. It keeps a per-user snapshot that successful mutations update
// in place, so screens never refetch after a write.
type LedgerService struct {
	txs       TransactionStore
	cats      CategoryStore
	events    EventPublisher
	inbox     *notify.Inbox
	snapshots *cache.LRUCache[core.Ledger]
	logger    *log.Logger

	// Users hash onto a fixed set of mutexes; two users may share one.
	locks [lockStripes]sync.Mutex
}

func NewLedgerService(txs TransactionStore, cats CategoryStore, inbox *notify.Inbox, events EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if inbox == nil {
		inbox = notify.NewInbox()
	}
	return &LedgerService{
		txs:       txs,
		cats:      cats,
		events:    events,
		inbox:     inbox,
		snapshots: cache.NewLRUCache[core.Ledger](maxSnapshotUsers, snapshotTTL),
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// Snapshots exposes the snapshot cache for periodic sweeping.
func (s *LedgerService) Snapshots() *cache.LRUCache[core.Ledger] {
	return s.snapshots
}

func (s *LedgerService) Inbox() *notify.Inbox {
	return s.inbox
}

func (s *LedgerService) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.locks[h.Sum32()%lockStripes]
}

// lock must not be nested: striped users would deadlock.
func (s *LedgerService) lock(userID string) func() {
	m := s.userLock(userID)
	m.Lock()
	return m.Unlock
}

// Load returns the user's ledger, fetching transactions and categories in
// parallel on a snapshot miss. The result is a copy the caller may keep.
func (s *LedgerService) Load(ctx context.Context, userID string) (core.Ledger, error) {
	if l, ok := s.snapshots.Get(userID); ok {
		return l.Clone(), nil
	}

	unlock := s.lock(userID)
	defer unlock()
	l, err := s.loadLocked(ctx, userID)
	if err != nil {
		return core.Ledger{}, err
	}
	return l.Clone(), nil
}

func (s *LedgerService) loadLocked(ctx context.Context, userID string) (core.Ledger, error) {
	if l, ok := s.snapshots.Get(userID); ok {
		return l, nil
	}

	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.txs.ListTransactions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.cats.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load ledger", log.FieldUserID, userID, log.FieldError, err)
		return core.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}

	l := core.NewLedger(txs, cats)
	s.snapshots.Set(userID, l)
	return l, nil
}

// mutate runs fn on the user's snapshot under the user lock. The snapshot
// is replaced only when fn succeeds.
func (s *LedgerService) mutate(ctx context.Context, userID string, fn func(l *core.Ledger) error) error {
	unlock := s.lock(userID)
	defer unlock()

	cur, err := s.loadLocked(ctx, userID)
	if err != nil {
		return err
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.snapshots.Set(userID, next)
	return nil
}

// AddTransaction stores t, puts it at the head of the snapshot and pushes a
// notification into the user's inbox.
func (s *LedgerService) AddTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var stored core.Transaction
	err := s.mutate(ctx, userID, func(l *core.Ledger) error {
		var err error
		stored, err = s.txs.CreateTransaction(ctx, t)
		if err != nil {
			s.logFailure(ctx, "Failed to create transaction", log.OpCreate, t, err)
			return err
		}
		l.Prepend(stored)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.inbox.Push(userID, s.inbox.ForTransaction(stored))
	s.logger.InfoContext(ctx, "Transaction recorded", log.NewFields().
		WithUser(userID).
		WithTransaction(stored.ID, string(stored.Type), stored.Amount.Cents, stored.CategoryName()).
		ToSlice()...)
	s.publishTransaction(ctx, amqp.TransactionCreated, stored)
	return stored, nil
}

// UpdateTransaction rewrites t and replaces it in the snapshot without
// moving it.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var stored core.Transaction
	err := s.mutate(ctx, userID, func(l *core.Ledger) error {
		var err error
		stored, err = s.txs.UpdateTransaction(ctx, t)
		if err != nil {
			s.logFailure(ctx, "Failed to update transaction", log.OpUpdate, t, err)
			return err
		}
		if !l.Replace(stored) {
			l.Prepend(stored)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.publishTransaction(ctx, amqp.TransactionUpdated, stored)
	return stored, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	err := s.mutate(ctx, userID, func(l *core.Ledger) error {
		if err := s.txs.DeleteTransaction(ctx, userID, id); err != nil {
			s.logFailure(ctx, "Failed to delete transaction", log.OpDelete, core.Transaction{ID: id, UserID: userID}, err)
			return err
		}
		l.RemoveTransaction(id)
		return nil
	})
	if err != nil {
		return err
	}
	s.publishTransaction(ctx, amqp.TransactionDeleted, core.Transaction{ID: id, UserID: userID})
	return nil
}

// AddCategory stores c and appends it to the snapshot.
func (s *LedgerService) AddCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	c.UserID = userID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	var stored core.Category
	err := s.mutate(ctx, userID, func(l *core.Ledger) error {
		var err error
		stored, err = s.cats.CreateCategory(ctx, c)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to create category",
				log.FieldUserID, userID, log.FieldOperation, log.OpCreate, log.FieldError, err)
			return err
		}
		l.AppendCategory(stored)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}
	return stored, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, func(l *core.Ledger) error {
		if err := s.cats.DeleteCategory(ctx, userID, id); err != nil {
			s.logger.ErrorContext(ctx, "Failed to delete category",
				log.FieldUserID, userID, log.FieldOperation, log.OpDelete, log.FieldError, err)
			return err
		}
		l.RemoveCategory(id)
		return nil
	})
}

// Invalidate drops the user's snapshot and notifications, as on logout.
func (s *LedgerService) Invalidate(userID string) {
	s.snapshots.Delete(userID)
	s.inbox.Clear(userID)
}

func (s *LedgerService) logFailure(ctx context.Context, msg, op string, t core.Transaction, err error) {
	fields := log.NewFields().
		WithUser(t.UserID).
		WithOperation(op).
		WithTransaction(t.ID, string(t.Type), t.Amount.Cents, t.CategoryName()).
		WithError(err)
	s.logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}

func (s *LedgerService) publishTransaction(ctx context.Context, typ amqp.EventType, t core.Transaction) {
	e, err := amqp.TransactionEvent(typ, t)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to build event", log.FieldEventType, typ, log.FieldError, err)
		return
	}
	publish(ctx, s.events, s.logger, e)
}
