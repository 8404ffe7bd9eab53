package conversation

// Mode identifies the kind of record a session is collecting.
type Mode string

const (
	ModeNone       Mode = "none"
	ModeAttendance Mode = "attendance"
	ModeLeave      Mode = "leave"
)

// DeviceTag is stamped onto every attendance record before confirmation. The
// bot only serves the smartphone channel, so the value is fixed.
const DeviceTag = "SP"

// Record holds the field values collected so far for one session. Slots for
// both modes live on the same struct; only the slots named by the active
// mode's field table are ever written.
type Record struct {
	Name        string
	WorkDay     string
	WorkStart   string
	WorkEnd     string
	BreakStart  string
	BreakEnd    string
	WorkSummary string
	Device      string

	LeaveDate string
	LeaveType string
}

// Complete reports whether every required slot for the mode holds a value.
// Completeness is the precondition for entering the confirmation step.
func (r Record) Complete(mode Mode) bool {
	for _, field := range fieldsFor(mode) {
		if field.Value(r) == "" {
			return false
		}
	}
	switch mode {
	case ModeAttendance:
		return r.Device != ""
	case ModeLeave:
		return true
	default:
		return false
	}
}
