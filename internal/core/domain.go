package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	NotificationAlert   NotificationKind = "alert"
	NotificationSuccess NotificationKind = "success"
)

// DefaultCategory is shown for transactions recorded without a category.
const DefaultCategory = "Geral"

// DefaultUserName is shown when a user never set a display name.
const DefaultUserName = "Usuário"

const (
	maxDescriptionLen = 200
	maxCategoryLen    = 60
	maxNameLen        = 80
)

type (
	TransactionType  string
	Theme            string
	NotificationKind string

	Transaction struct {
		ID          string
		UserID      string
		Description string
		Category    string
		Amount      Money
		Type        TransactionType
		Date        time.Time
		CreatedAt   time.Time
	}

	Category struct {
		ID        string
		UserID    string
		Name      string
		Icon      string
		CreatedAt time.Time
	}

	// User is the auth record; display preferences live on it as metadata.
	User struct {
		ID           string
		Email        string
		PasswordHash string
		Name         string
		AvatarURL    string
		Wallpaper    string
		Theme        Theme
		PrivacyMode  bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	UserProfile struct {
		Name      string
		Email     string
		Avatar    string
		Wallpaper string
	}

	Notification struct {
		ID      string
		Title   string
		Message string
		Date    time.Time
		Read    bool
		Kind    NotificationKind
	}
)

// CategoryIcons lists the icon labels a category may use.
var CategoryIcons = []string{
	"shopping_cart", "home", "directions_car", "restaurant",
	"medical_services", "school", "theater_comedy", "fitness_center",
	"flight", "payments", "category", "build", "pets", "work", "redeem",
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount too large")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("date cannot be zero")
	ErrCategoryTooLong    = errors.New("category too long (max 60 characters)")
	ErrEmptyCategoryName  = errors.New("empty category name")
	ErrInvalidIcon        = errors.New("invalid category icon")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 80 characters)")
	ErrInvalidEmail       = errors.New("invalid email")

	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxCents {
		return ErrAmountTooLarge
	}
	return nil
}

func (t Transaction) Validate() error {
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if utf8.RuneCountInString(strings.TrimSpace(t.Category)) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	return nil
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// CategoryName returns the category label, falling back to DefaultCategory.
func (t Transaction) CategoryName() string {
	if c := strings.TrimSpace(t.Category); c != "" {
		return c
	}
	return DefaultCategory
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if utf8.RuneCountInString(name) > maxCategoryLen {
		return ErrCategoryTooLong
	}
	if !ValidIcon(c.Icon) {
		return ErrInvalidIcon
	}
	return nil
}

func ValidIcon(icon string) bool {
	for _, i := range CategoryIcons {
		if i == icon {
			return true
		}
	}
	return false
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return ErrNameTooLong
	}
	return nil
}

// ValidateEmail does a shallow shape check; the store enforces uniqueness.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at != strings.LastIndex(email, "@") || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrInvalidEmail
	}
	return nil
}

// Profile returns the metadata view of the user.
func (u User) Profile() UserProfile {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = DefaultUserName
	}
	return UserProfile{
		Name:      name,
		Email:     u.Email,
		Avatar:    u.AvatarURL,
		Wallpaper: u.Wallpaper,
	}
}

// EffectiveTheme returns the stored theme or the dark default.
func (u User) EffectiveTheme() Theme {
	if u.Theme == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme maps a form value to a Theme, defaulting to dark.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
