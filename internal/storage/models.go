package storage

// Row types mirror the tables in migrations/. Timestamps are stored as
// RFC 3339 text in UTC so lexical order matches chronological order.

type User struct {
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

type Transaction struct {
	ID          string
	UserID      string
	Description string
	Category    string
	AmountCents int64
	Type        string
	Date        string
	CreatedAt   string
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	Icon      string
	CreatedAt string
}
