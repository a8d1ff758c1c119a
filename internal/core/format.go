package core

import "time"

// FormatTime renders HH:mm.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatDateShort renders DD/MM.
func FormatDateShort(t time.Time) string {
	return t.Format("02/01")
}

// FormatDateFull renders DD/MM/YYYY.
func FormatDateFull(t time.Time) string {
	return t.Format("02/01/2006")
}
