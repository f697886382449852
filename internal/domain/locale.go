package domain

import "time"

// Locale is the closed set of dashboard languages.
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
	LocaleJA Locale = "ja"
)

// DefaultLocale is the fallback when a request carries an unknown locale.
const DefaultLocale = LocaleZH

// SupportedLocales lists the closed locale set in display order.
var SupportedLocales = []Locale{LocaleZH, LocaleEN, LocaleJA}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	switch l {
	case LocaleZH, LocaleEN, LocaleJA:
		return true
	}
	return false
}

// ParseLocale maps a request string onto the closed locale set, falling back
// to def when the value is empty or unknown.
func ParseLocale(s string, def Locale) Locale {
	l := Locale(s)
	if l.Valid() {
		return l
	}
	return def
}

// FormatTimestamp renders a generation timestamp the way each locale's
// dashboard displays it.
func FormatTimestamp(l Locale, t time.Time) string {
	switch l {
	case LocaleJA:
		return t.Format("2006/01/02 15:04:05")
	case LocaleEN:
		return t.Format("1/2/2006, 3:04:05 PM")
	default:
		return t.Format("2006-01-02 15:04:05")
	}
}
