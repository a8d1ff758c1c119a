// Package notify keeps the per-user notification inbox. Inboxes live only in
// memory and disappear on restart or after a day without new entries.
package notify

import (
	"time"

	"carteira/internal/cache"
	"carteira/internal/core"

	"github.com/google/uuid"
)

const (
	// MaxPerUser caps each inbox; older entries fall off the end.
	MaxPerUser = 50
	inboxTTL   = 24 * time.Hour
	maxInboxes = 10000
)

type Inbox struct {
	store *cache.LRUCache[[]core.Notification]
	now   func() time.Time
}

func NewInbox() *Inbox {
	return &Inbox{
		store: cache.NewLRUCache[[]core.Notification](maxInboxes, inboxTTL),
		now:   time.Now,
	}
}

// Cache exposes the backing store so it can be registered for sweeping.
func (i *Inbox) Cache() *cache.LRUCache[[]core.Notification] {
	return i.store
}

// Push adds n at the head of the user's inbox.
func (i *Inbox) Push(userID string, n core.Notification) {
	i.store.Update(userID, func(cur []core.Notification, _ bool) []core.Notification {
		next := make([]core.Notification, 0, min(len(cur)+1, MaxPerUser))
		next = append(next, n)
		next = append(next, cur...)
		if len(next) > MaxPerUser {
			next = next[:MaxPerUser]
		}
		return next
	})
}

// List returns a copy of the inbox, newest first.
func (i *Inbox) List(userID string) []core.Notification {
	cur, _ := i.store.Get(userID)
	return append([]core.Notification(nil), cur...)
}

func (i *Inbox) UnreadCount(userID string) int {
	cur, _ := i.store.Get(userID)
	count := 0
	for _, n := range cur {
		if !n.Read {
			count++
		}
	}
	return count
}

func (i *Inbox) MarkAllRead(userID string) {
	if _, ok := i.store.Get(userID); !ok {
		return
	}
	i.store.Update(userID, func(cur []core.Notification, _ bool) []core.Notification {
		next := make([]core.Notification, len(cur))
		for idx, n := range cur {
			n.Read = true
			next[idx] = n
		}
		return next
	})
}

func (i *Inbox) Clear(userID string) {
	i.store.Delete(userID)
}

// ForTransaction builds the notification announcing a newly recorded transaction.
func (i *Inbox) ForTransaction(t core.Transaction) core.Notification {
	n := core.Notification{
		ID:      uuid.NewString(),
		Title:   "Receita Recebida",
		Message: t.Description + " de R$ " + core.FormatAmount(t.Amount.Cents) + " foi adicionado(a).",
		Date:    i.now(),
		Kind:    core.NotificationSuccess,
	}
	if t.Type == core.Expense {
		n.Title = "Despesa Registrada"
		n.Kind = core.NotificationAlert
	}
	return n
}
