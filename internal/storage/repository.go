package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carteira/internal/core"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database file and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	now := r.now().UTC()
	row, err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.Name,
		AvatarUrl:    u.AvatarURL,
		Wallpaper:    u.Wallpaper,
		Theme:        string(u.EffectiveTheme()),
		PrivacyMode:  boolToInt(u.PrivacyMode),
		CreatedAt:    now.Format(timeLayout),
		UpdatedAt:    now.Format(timeLayout),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return userFromRow(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, notFound(err, "get user by email")
	}
	return userFromRow(row), nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, notFound(err, "get user by id")
	}
	return userFromRow(row), nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]core.User, len(rows))
	for i, row := range rows {
		users[i] = userFromRow(row)
	}
	return users, nil
}

// UpdateUserProfile overwrites the metadata columns of the user.
func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, u core.User) error {
	n, err := r.queries.UpdateUserProfile(ctx, UpdateUserProfileParams{
		FullName:    u.Name,
		AvatarUrl:   u.AvatarURL,
		Wallpaper:   u.Wallpaper,
		Theme:       string(u.EffectiveTheme()),
		PrivacyMode: boolToInt(u.PrivacyMode),
		UpdatedAt:   r.now().UTC().Format(timeLayout),
		ID:          u.ID,
	})
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	n, err := r.queries.UpdateUserPassword(ctx, passwordHash, r.now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with unreadable date", "id", row.ID, "error", err)
			continue
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          uuid.NewString(),
		UserID:      t.UserID,
		Description: strings.TrimSpace(t.Description),
		Category:    strings.TrimSpace(t.Category),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        t.Date.UTC().Format(timeLayout),
		CreatedAt:   r.now().UTC().Format(timeLayout),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"amount_cents", row.AmountCents)

	return transactionFromRow(row)
}

// UpdateTransaction rewrites a transaction owned by t.UserID.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Description: strings.TrimSpace(t.Description),
		Category:    strings.TrimSpace(t.Category),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        t.Date.UTC().Format(timeLayout),
		ID:          t.ID,
		UserID:      t.UserID,
	})
	if err != nil {
		return core.Transaction{}, notFound(err, "update transaction")
	}
	return transactionFromRow(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats := make([]core.Category, len(rows))
	for i, row := range rows {
		cats[i] = categoryFromRow(row)
	}
	return cats, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, CreateCategoryParams{
		ID:        uuid.NewString(),
		UserID:    c.UserID,
		Name:      strings.TrimSpace(c.Name),
		Icon:      c.Icon,
		CreatedAt: r.now().UTC().Format(timeLayout),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return categoryFromRow(row), nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteCategory(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func userFromRow(row User) core.User {
	return core.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.FullName,
		AvatarURL:    row.AvatarUrl,
		Wallpaper:    row.Wallpaper,
		Theme:        core.ParseTheme(row.Theme),
		PrivacyMode:  row.PrivacyMode != 0,
		CreatedAt:    parseTime(row.CreatedAt),
		UpdatedAt:    parseTime(row.UpdatedAt),
	}
}

func transactionFromRow(row Transaction) (core.Transaction, error) {
	date, err := time.Parse(timeLayout, row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", row.Date, err)
	}
	return core.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Description: row.Description,
		Category:    row.Category,
		Amount:      core.Money{Cents: row.AmountCents},
		Type:        core.TransactionType(row.Type),
		Date:        date.Local(),
		CreatedAt:   parseTime(row.CreatedAt),
	}, nil
}

func categoryFromRow(row Category) core.Category {
	return core.Category{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		Icon:      row.Icon,
		CreatedAt: parseTime(row.CreatedAt),
	}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
