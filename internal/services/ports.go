package services

import (
	"context"

	"carteira/internal/amqp"
	"carteira/internal/core"
)

// Ports implemented by internal/storage and internal/storage/memory.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		UpdateUserProfile(ctx context.Context, u core.User) error
		UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	}

	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, userID, id string) error
	}

	// Store is everything a data backend provides.
	Store interface {
		UserStore
		TransactionStore
		CategoryStore
		Ping(ctx context.Context) error
		Close() error
	}

	// EventPublisher is satisfied by *amqp.Client. A nil publisher disables events.
	EventPublisher interface {
		Publish(ctx context.Context, e amqp.Event) error
	}
)
