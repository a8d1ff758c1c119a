package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"carteira/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "carteira.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Email: "ana@example.com", PasswordHash: "hash", Name: "Ana"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" || u.Theme != core.ThemeDark || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := repo.CreateUser(ctx, core.User{Email: "ana@example.com", PasswordHash: "x"}); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u.Name = "Ana Souza"
	u.Theme = core.ThemeLight
	u.PrivacyMode = true
	u.AvatarURL = "data:image/png;base64,AAAA"
	if err := repo.UpdateUserProfile(ctx, u); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := repo.UpdateUserPassword(ctx, u.ID, "hash2"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	got, err := repo.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "Ana Souza" || got.Theme != core.ThemeLight || !got.PrivacyMode || got.PasswordHash != "hash2" || got.AvatarURL == "" {
		t.Fatalf("profile not persisted: %+v", got)
	}

	if err := repo.UpdateUserProfile(ctx, core.User{ID: "missing"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("list users: %d %v", len(users), err)
	}
}

func TestSQLiteTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner, _ := repo.CreateUser(ctx, core.User{Email: "a@b.com", PasswordHash: "h"})
	other, _ := repo.CreateUser(ctx, core.User{Email: "c@d.com", PasswordHash: "h"})

	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	first, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: owner.ID, Description: " Salário ", Amount: core.Money{Cents: 500000},
		Type: core.Income, Date: day,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Description != "Salário" || !first.Date.Equal(day) {
		t.Fatalf("unexpected stored row: %+v", first)
	}
	second, _ := repo.CreateTransaction(ctx, core.Transaction{
		UserID: owner.ID, Description: "Mercado", Category: "Alimentação",
		Amount: core.Money{Cents: 12345}, Type: core.Expense, Date: day.AddDate(0, 0, 2),
	})

	list, err := repo.ListTransactions(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	second.Amount = core.Money{Cents: 999}
	updated, err := repo.UpdateTransaction(ctx, second)
	if err != nil || updated.Amount.Cents != 999 {
		t.Fatalf("update: %+v %v", updated, err)
	}

	stolen := second
	stolen.UserID = other.ID
	if _, err := repo.UpdateTransaction(ctx, stolen); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign update, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, other.ID, second.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, owner.ID, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = repo.ListTransactions(ctx, owner.ID)
	if len(list) != 1 {
		t.Fatalf("expected one transaction left, got %d", len(list))
	}
}

func TestSQLiteCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner, _ := repo.CreateUser(ctx, core.User{Email: "a@b.com", PasswordHash: "h"})

	for _, name := range []string{"mercado", "Aluguel", "Lazer"} {
		if _, err := repo.CreateCategory(ctx, core.Category{UserID: owner.ID, Name: name, Icon: "category"}); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}
	cats, err := repo.ListCategories(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 3 || cats[0].Name != "Aluguel" || cats[2].Name != "mercado" {
		t.Fatalf("expected case-insensitive name order, got %+v", cats)
	}
	if err := repo.DeleteCategory(ctx, owner.ID, cats[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteCategory(ctx, owner.ID, cats[0].ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil || v1 != v2 || v1 != 1 {
		t.Fatalf("second run: v1=%d v2=%d err=%v", v1, v2, err)
	}
}
