package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/example/attendance-bot/internal/persistence"
)

// MemoryAttendanceRepository is an in-memory persistence.AttendanceRepository.
type MemoryAttendanceRepository struct {
	mu      sync.Mutex
	records []persistence.AttendanceRecord
	// FailCreate, when set, is returned by every CreateAttendance call.
	FailCreate error
}

// NewMemoryAttendanceRepository returns an empty repository.
func NewMemoryAttendanceRepository() *MemoryAttendanceRepository {
	return &MemoryAttendanceRepository{}
}

// CreateAttendance stores the record or returns the configured failure.
func (m *MemoryAttendanceRepository) CreateAttendance(_ context.Context, record persistence.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	m.records = append(m.records, record)
	return nil
}

// ListAttendanceByUser filters stored records by lineID.
func (m *MemoryAttendanceRepository) ListAttendanceByUser(_ context.Context, lineID string) ([]persistence.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.AttendanceRecord
	for _, record := range m.records {
		if record.LineID == lineID {
			out = append(out, record)
		}
	}
	return out, nil
}

// Records returns a copy of everything stored so far.
func (m *MemoryAttendanceRepository) Records() []persistence.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]persistence.AttendanceRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MemoryLeaveRepository is an in-memory persistence.LeaveRepository.
type MemoryLeaveRepository struct {
	mu      sync.Mutex
	records []persistence.LeaveRecord
	// FailCreate, when set, is returned by every CreateLeave call.
	FailCreate error
}

// NewMemoryLeaveRepository returns an empty repository.
func NewMemoryLeaveRepository() *MemoryLeaveRepository {
	return &MemoryLeaveRepository{}
}

// CreateLeave stores the record or returns the configured failure.
func (m *MemoryLeaveRepository) CreateLeave(_ context.Context, record persistence.LeaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	m.records = append(m.records, record)
	return nil
}

// ListLeaveByUser filters stored records by lineID.
func (m *MemoryLeaveRepository) ListLeaveByUser(_ context.Context, lineID string) ([]persistence.LeaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []persistence.LeaveRecord
	for _, record := range m.records {
		if record.LineID == lineID {
			out = append(out, record)
		}
	}
	return out, nil
}

// Records returns a copy of everything stored so far.
func (m *MemoryLeaveRepository) Records() []persistence.LeaveRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]persistence.LeaveRecord, len(m.records))
	copy(out, m.records)
	return out
}

// MemoryUserRegistry is an in-memory persistence.UserRegistry.
type MemoryUserRegistry struct {
	mu    sync.Mutex
	users map[string]persistence.RegisteredUser
}

// NewMemoryUserRegistry returns an empty registry.
func NewMemoryUserRegistry() *MemoryUserRegistry {
	return &MemoryUserRegistry{users: make(map[string]persistence.RegisteredUser)}
}

// RegisterUser stores a user, enforcing line_id uniqueness.
func (m *MemoryUserRegistry) RegisterUser(_ context.Context, user persistence.RegisteredUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" || user.LineID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := m.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range m.users {
		if existing.LineID == user.LineID {
			return persistence.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (m *MemoryUserRegistry) GetUser(_ context.Context, id string) (persistence.RegisteredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return persistence.RegisteredUser{}, persistence.ErrNotFound
	}
	return user, nil
}

// ListUsers returns users ordered by creation time then ID.
func (m *MemoryUserRegistry) ListUsers(_ context.Context) ([]persistence.RegisteredUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]persistence.RegisteredUser, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteUser removes a user by ID.
func (m *MemoryUserRegistry) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// SentMessage is one delivery captured by RecordingNotifier.
type SentMessage struct {
	Kind string // "reply" or "push"
	To   string // reply token or user ID
	Text string
}

// RecordingNotifier captures outbound messages for assertions. Individual
// recipients can be made to fail.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []SentMessage
	// FailFor maps a recipient (reply token or user ID) to the error its
	// deliveries should return.
	FailFor map[string]error
}

// NewRecordingNotifier returns an empty notifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{FailFor: make(map[string]error)}
}

// Reply records a reply delivery.
func (n *RecordingNotifier) Reply(_ context.Context, replyToken, text string) error {
	return n.record("reply", replyToken, text)
}

// Push records a push delivery.
func (n *RecordingNotifier) Push(_ context.Context, userID, text string) error {
	return n.record("push", userID, text)
}

func (n *RecordingNotifier) record(kind, to, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.FailFor[to]; ok {
		return err
	}
	n.messages = append(n.messages, SentMessage{Kind: kind, To: to, Text: text})
	return nil
}

// Messages returns a copy of every recorded delivery.
func (n *RecordingNotifier) Messages() []SentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SentMessage, len(n.messages))
	copy(out, n.messages)
	return out
}
