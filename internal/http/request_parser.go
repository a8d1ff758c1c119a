// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// transaction forms, query parameters and image uploads.

package http

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"carteira/internal/analytics"
	"carteira/internal/core"
)

var (
	ErrNoFile         = errors.New("no file uploaded")
	ErrNotAnImage     = errors.New("uploaded file is not an image")
	ErrUploadTooLarge = errors.New("uploaded file too large")

	ErrUnknownWallpaper = errors.New("unknown wallpaper preset")
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// allowedImageTypes are the sniffed MIME types accepted for avatar and wallpaper.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// TransactionForm is the raw form, kept for re-rendering on validation errors.
type TransactionForm struct {
	ID          string
	Description string
	Amount      string
	Type        string
	Category    string
	Date        string
	Time        string
}

// NewTransactionForm prefills an empty form for typ at now.
func NewTransactionForm(typ core.TransactionType, now time.Time) TransactionForm {
	if !typ.Valid() {
		typ = core.Expense
	}
	return TransactionForm{
		Type: string(typ),
		Date: now.Format(formDateLayout),
		Time: now.Format(formTimeLayout),
	}
}

// FormFromTransaction fills the form for editing t.
func FormFromTransaction(t core.Transaction) TransactionForm {
	local := t.Date.Local()
	return TransactionForm{
		ID:          t.ID,
		Description: t.Description,
		Amount:      strings.ReplaceAll(t.Amount.Reais().StringFixed(2), ".", ","),
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        local.Format(formDateLayout),
		Time:        local.Format(formTimeLayout),
	}
}

// ParseTransactionForm reads the transaction fields from form.
func ParseTransactionForm(form url.Values) TransactionForm {
	return TransactionForm{
		Description: sanitizeInput(form.Get("description")),
		Amount:      strings.TrimSpace(form.Get("amount")),
		Type:        strings.TrimSpace(form.Get("type")),
		Category:    sanitizeInput(form.Get("category")),
		Date:        strings.TrimSpace(form.Get("date")),
		Time:        strings.TrimSpace(form.Get("time")),
	}
}

// Transaction converts the form, returning core validation errors. A missing
// time defaults to noon so the date does not shift across time zones.
func (f TransactionForm) Transaction() (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(f.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	clock := f.Time
	if clock == "" {
		clock = "12:00"
	}
	date, err := time.ParseInLocation(formDateLayout+" "+formTimeLayout, f.Date+" "+clock, time.Local)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	t := core.Transaction{
		ID:          f.ID,
		Description: f.Description,
		Category:    f.Category,
		Amount:      core.Money{Cents: cents},
		Type:        core.TransactionType(f.Type),
		Date:        date,
	}
	return t, t.Validate()
}

// ParsePeriod reads ?period=, defaulting to six months.
func ParsePeriod(query url.Values) analytics.Period {
	return analytics.ParsePeriod(query.Get("period"))
}

// ReadImageUpload reads the multipart file in field, sniffs its content type
// and returns it as a data URL. The request body must already be limited.
func ReadImageUpload(r *http.Request, field string, maxBytes int64) (string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", ErrUploadTooLarge
		}
		return "", ErrNoFile
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return "", ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", ErrUploadTooLarge
	}
	if len(data) == 0 {
		return "", ErrNoFile
	}

	mime := http.DetectContentType(data)
	if !allowedImageTypes[mime] {
		return "", ErrNotAnImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
