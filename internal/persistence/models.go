package persistence

import "time"

// AttendanceRecord is one committed day of work for a chat user. Dates and
// times keep the canonical text forms produced by the conversation layer
// (YYYY-MM-DD and HH:MM) because that is what the original reporting tooling
// reads back.
type AttendanceRecord struct {
	ID          string
	Name        string
	WorkDay     string
	WorkStart   string
	WorkEnd     string
	BreakStart  string
	BreakEnd    string
	WorkSummary string
	Device      string
	LineID      string
	CreatedAt   time.Time
}

// LeaveRecord is one committed leave request.
type LeaveRecord struct {
	ID        string
	LeaveDate string
	LeaveType string
	LineID    string
	CreatedAt time.Time
}

// RegisteredUser is a known chat user eligible for the daily reminder push.
type RegisteredUser struct {
	ID          string
	LineID      string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
