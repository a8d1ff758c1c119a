package storage

import (
	"context"
	"database/sql"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, password_hash, full_name, avatar_url, wallpaper, theme, privacy_mode, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, email, password_hash, full_name, avatar_url, wallpaper, theme, privacy_mode, created_at, updated_at
`

type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	AvatarUrl    string
	Wallpaper    string
	Theme        string
	PrivacyMode  int64
	CreatedAt    string
	UpdatedAt    string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.PasswordHash,
		arg.FullName,
		arg.AvatarUrl,
		arg.Wallpaper,
		arg.Theme,
		arg.PrivacyMode,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanUser(row)
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, password_hash, full_name, avatar_url, wallpaper, theme, privacy_mode, created_at, updated_at
FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, email, password_hash, full_name, avatar_url, wallpaper, theme, privacy_mode, created_at, updated_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const listUsers = `-- name: ListUsers :many
SELECT id, email, password_hash, full_name, avatar_url, wallpaper, theme, privacy_mode, created_at, updated_at
FROM users
ORDER BY created_at
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateUserProfile = `-- name: UpdateUserProfile :execrows
UPDATE users
SET full_name = ?, avatar_url = ?, wallpaper = ?, theme = ?, privacy_mode = ?, updated_at = ?
WHERE id = ?
`

type UpdateUserProfileParams struct {
	FullName    string
	AvatarUrl   string
	Wallpaper   string
	Theme       string
	PrivacyMode int64
	UpdatedAt   string
	ID          string
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserProfile,
		arg.FullName,
		arg.AvatarUrl,
		arg.Wallpaper,
		arg.Theme,
		arg.PrivacyMode,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateUserPassword = `-- name: UpdateUserPassword :execrows
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

func (q *Queries) UpdateUserPassword(ctx context.Context, passwordHash, updatedAt, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserPassword, passwordHash, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, user_id, description, category, amount_cents, type, date, created_at
FROM transactions
WHERE user_id = ?
ORDER BY date DESC, created_at DESC
`

func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Description,
			&i.Category,
			&i.AmountCents,
			&i.Type,
			&i.Date,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (id, user_id, description, category, amount_cents, type, date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, description, category, amount_cents, type, date, created_at
`

type CreateTransactionParams struct {
	ID          string
	UserID      string
	Description string
	Category    string
	AmountCents int64
	Type        string
	Date        string
	CreatedAt   string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.Description,
		arg.Category,
		arg.AmountCents,
		arg.Type,
		arg.Date,
		arg.CreatedAt,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Description,
		&i.Category,
		&i.AmountCents,
		&i.Type,
		&i.Date,
		&i.CreatedAt,
	)
	return i, err
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET description = ?, category = ?, amount_cents = ?, type = ?, date = ?
WHERE id = ? AND user_id = ?
RETURNING id, user_id, description, category, amount_cents, type, date, created_at
`

type UpdateTransactionParams struct {
	Description string
	Category    string
	AmountCents int64
	Type        string
	Date        string
	ID          string
	UserID      string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Description,
		arg.Category,
		arg.AmountCents,
		arg.Type,
		arg.Date,
		arg.ID,
		arg.UserID,
	)
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Description,
		&i.Category,
		&i.AmountCents,
		&i.Type,
		&i.Date,
		&i.CreatedAt,
	)
	return i, err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listCategories = `-- name: ListCategories :many
SELECT id, user_id, name, icon, created_at
FROM categories
WHERE user_id = ?
ORDER BY name COLLATE NOCASE
`

func (q *Queries) ListCategories(ctx context.Context, userID string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Icon,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (id, user_id, name, icon, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, name, icon, created_at
`

type CreateCategoryParams struct {
	ID        string
	UserID    string
	Name      string
	Icon      string
	CreatedAt string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Icon,
		arg.CreatedAt,
	)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Icon,
		&i.CreatedAt,
	)
	return i, err
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

var _ rowScanner = (*sql.Row)(nil)

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.AvatarUrl,
		&i.Wallpaper,
		&i.Theme,
		&i.PrivacyMode,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
