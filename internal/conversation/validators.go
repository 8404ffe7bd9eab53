package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeDate canonicalizes a raw date entry. It accepts the compact
// YYYYMMDD form or hyphenated YYYY-MM-DD and returns the hyphenated form.
// Calendar-invalid dates such as 2024-13-01 are rejected.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if len(s) == 8 && allDigits(s) {
		s = s[:4] + "-" + s[4:6] + "-" + s[6:]
	}

	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return "", false
	}
	if !allDigits(s[:4]) || !allDigits(s[5:7]) || !allDigits(s[8:]) {
		return "", false
	}

	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}

	return s, true
}

// NormalizeTime canonicalizes a raw time entry into zero-padded HH:MM.
// Accepted shapes are HHMM, H:MM, HH:MM, and a bare one to three digit value,
// which is zero-padded on the left to four digits before parsing, so "800"
// means 08:00.
func NormalizeTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if colon := strings.IndexByte(s, ':'); colon >= 0 {
		hourPart := s[:colon]
		minutePart := s[colon+1:]
		if len(hourPart) < 1 || len(hourPart) > 2 || len(minutePart) != 2 {
			return "", false
		}
		if !allDigits(hourPart) || !allDigits(minutePart) {
			return "", false
		}
		return formatClock(hourPart, minutePart)
	}

	if len(s) < 1 || len(s) > 4 || !allDigits(s) {
		return "", false
	}
	for len(s) < 4 {
		s = "0" + s
	}
	return formatClock(s[:2], s[2:])
}

func formatClock(hourPart, minutePart string) (string, bool) {
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour > 23 {
		return "", false
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// NormalizeText accepts any non-empty trimmed string.
func NormalizeText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeChoice returns a validator accepting exactly one of the given
// literal options.
func NormalizeChoice(options ...string) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		s := strings.TrimSpace(raw)
		for _, option := range options {
			if s == option {
				return s, true
			}
		}
		return "", false
	}
}

// Confirmation classifies a reply to the final Y/N question.
type Confirmation int

const (
	ConfirmationInvalid Confirmation = iota
	ConfirmationYes
	ConfirmationNo
)

// ParseConfirmation accepts case-insensitive y/n and nothing else.
func ParseConfirmation(raw string) Confirmation {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y":
		return ConfirmationYes
	case "n":
		return ConfirmationNo
	default:
		return ConfirmationInvalid
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
