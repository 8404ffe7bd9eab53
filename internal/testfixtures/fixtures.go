package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
)

var (
	attendanceCounter uint64
	leaveCounter      uint64
	userCounter       uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// AttendanceOption configures the generated attendance fixture.
type AttendanceOption func(*persistence.AttendanceRecord)

// NewAttendanceFixture returns a deterministic attendance record with
// optional overrides.
func NewAttendanceFixture(opts ...AttendanceOption) persistence.AttendanceRecord {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	record := persistence.AttendanceRecord{
		ID:          fmt.Sprintf("att-%03d", idx),
		Name:        fmt.Sprintf("社員 %03d", idx),
		WorkDay:     "2024-01-15",
		WorkStart:   "09:00",
		WorkEnd:     "18:00",
		BreakStart:  "12:00",
		BreakEnd:    "13:00",
		WorkSummary: "アプリ開発",
		Device:      "SP",
		LineID:      fmt.Sprintf("U%032d", idx),
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithAttendanceLineID overrides the generated chat user identifier.
func WithAttendanceLineID(lineID string) AttendanceOption {
	return func(r *persistence.AttendanceRecord) {
		r.LineID = lineID
	}
}

// WithAttendanceWorkDay overrides the generated work day.
func WithAttendanceWorkDay(day string) AttendanceOption {
	return func(r *persistence.AttendanceRecord) {
		r.WorkDay = day
	}
}

// LeaveOption configures the generated leave fixture.
type LeaveOption func(*persistence.LeaveRecord)

// NewLeaveFixture returns a deterministic leave record with optional
// overrides.
func NewLeaveFixture(opts ...LeaveOption) persistence.LeaveRecord {
	idx := atomic.AddUint64(&leaveCounter, 1)
	record := persistence.LeaveRecord{
		ID:        fmt.Sprintf("leave-%03d", idx),
		LeaveDate: "2024-02-01",
		LeaveType: "全日休",
		LineID:    fmt.Sprintf("U%032d", idx),
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithLeaveLineID overrides the generated chat user identifier.
func WithLeaveLineID(lineID string) LeaveOption {
	return func(r *persistence.LeaveRecord) {
		r.LineID = lineID
	}
}

// RegisteredUserOption configures the generated registered-user fixture.
type RegisteredUserOption func(*persistence.RegisteredUser)

// NewRegisteredUserFixture returns a deterministic registry entry with
// optional overrides.
func NewRegisteredUserFixture(opts ...RegisteredUserOption) persistence.RegisteredUser {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.RegisteredUser{
		ID:          fmt.Sprintf("user-%03d", idx),
		LineID:      fmt.Sprintf("U%032d", idx),
		DisplayName: fmt.Sprintf("ユーザー %03d", idx),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithRegisteredLineID overrides the generated chat user identifier.
func WithRegisteredLineID(lineID string) RegisteredUserOption {
	return func(u *persistence.RegisteredUser) {
		u.LineID = lineID
	}
}
