package persistence

import "context"

// AttendanceRepository stores committed attendance records. CreateAttendance
// must be atomic: the record is fully written or not written at all.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, record AttendanceRecord) error
	ListAttendanceByUser(ctx context.Context, lineID string) ([]AttendanceRecord, error)
}

// LeaveRepository stores committed leave records with the same atomicity
// contract.
type LeaveRepository interface {
	CreateLeave(ctx context.Context, record LeaveRecord) error
	ListLeaveByUser(ctx context.Context, lineID string) ([]LeaveRecord, error)
}

// UserRegistry stores the known chat users targeted by the reminder push.
type UserRegistry interface {
	RegisterUser(ctx context.Context, user RegisteredUser) error
	GetUser(ctx context.Context, id string) (RegisteredUser, error)
	ListUsers(ctx context.Context) ([]RegisteredUser, error)
	DeleteUser(ctx context.Context, id string) error
}
