package conversation

import "strings"

// Mode-entry keywords, matched literally and case-sensitively against the
// trimmed message text.
const (
	KeywordAttendance = "勤怠"
	KeywordLeave      = "休暇"
)

// FieldDescriptor defines one collection step: the prompt shown to the user,
// the hint repeated on rejection, the validator that canonicalizes input, and
// the record slot the canonical value lands in. The per-mode descriptor lists
// below are the state machine's transition table; step i addresses entry i.
type FieldDescriptor struct {
	Name     string
	Label    string
	Prompt   string
	Hint     string
	Validate func(string) (string, bool)
	Assign   func(*Record, string)
	Value    func(Record) string
}

var attendanceFields = []FieldDescriptor{
	{
		Name:     "name",
		Label:    "名前",
		Prompt:   "名前を入力してください:",
		Hint:     "名前を空にすることはできません。",
		Validate: NormalizeText,
		Assign:   func(r *Record, v string) { r.Name = v },
		Value:    func(r Record) string { return r.Name },
	},
	{
		Name:     "work_day",
		Label:    "勤務日",
		Prompt:   "勤務日を入力してください (YYYY-MM-DD) 例 2024-01-01:",
		Hint:     "日付は YYYYMMDD または YYYY-MM-DD 形式で入力してください。",
		Validate: NormalizeDate,
		Assign:   func(r *Record, v string) { r.WorkDay = v },
		Value:    func(r Record) string { return r.WorkDay },
	},
	{
		Name:     "work_start",
		Label:    "出勤時間",
		Prompt:   "出勤時間を入力してください (HH:MM) 例 8:00:",
		Hint:     "時刻は HH:MM または HHMM 形式で入力してください。",
		Validate: NormalizeTime,
		Assign:   func(r *Record, v string) { r.WorkStart = v },
		Value:    func(r Record) string { return r.WorkStart },
	},
	{
		Name:     "work_end",
		Label:    "退勤時間",
		Prompt:   "退勤時間を入力してください (HH:MM) 例 17:00:",
		Hint:     "時刻は HH:MM または HHMM 形式で入力してください。",
		Validate: NormalizeTime,
		Assign:   func(r *Record, v string) { r.WorkEnd = v },
		Value:    func(r Record) string { return r.WorkEnd },
	},
	{
		Name:     "break_start",
		Label:    "休憩開始時間",
		Prompt:   "休憩開始時間を入力してください (HH:MM) 例 12:00:",
		Hint:     "時刻は HH:MM または HHMM 形式で入力してください。",
		Validate: NormalizeTime,
		Assign:   func(r *Record, v string) { r.BreakStart = v },
		Value:    func(r Record) string { return r.BreakStart },
	},
	{
		Name:     "break_end",
		Label:    "休憩終了時間",
		Prompt:   "休憩終了時間を入力してください (HH:MM) 例 13:00:",
		Hint:     "時刻は HH:MM または HHMM 形式で入力してください。",
		Validate: NormalizeTime,
		Assign:   func(r *Record, v string) { r.BreakEnd = v },
		Value:    func(r Record) string { return r.BreakEnd },
	},
	{
		Name:     "work_summary",
		Label:    "業務日報",
		Prompt:   "業務日報を入力してください 例 アプリ開発:",
		Hint:     "業務日報を空にすることはできません。",
		Validate: NormalizeText,
		Assign:   func(r *Record, v string) { r.WorkSummary = v },
		Value:    func(r Record) string { return r.WorkSummary },
	},
}

var leaveFields = []FieldDescriptor{
	{
		Name:     "leave_date",
		Label:    "休暇日",
		Prompt:   "休暇日を入力してください (YYYY-MM-DD):",
		Hint:     "日付は YYYYMMDD または YYYY-MM-DD 形式で入力してください。",
		Validate: NormalizeDate,
		Assign:   func(r *Record, v string) { r.LeaveDate = v },
		Value:    func(r Record) string { return r.LeaveDate },
	},
	{
		Name:     "leave_type",
		Label:    "休暇種類",
		Prompt:   "休暇の種類を選択してください (全日休, 午前休, 午後休):",
		Hint:     "休暇の種類は 全日休、午前休、午後休 のいずれかを入力してください。",
		Validate: NormalizeChoice("全日休", "午前休", "午後休"),
		Assign:   func(r *Record, v string) { r.LeaveType = v },
		Value:    func(r Record) string { return r.LeaveType },
	},
}

func fieldsFor(mode Mode) []FieldDescriptor {
	switch mode {
	case ModeAttendance:
		return attendanceFields
	case ModeLeave:
		return leaveFields
	default:
		return nil
	}
}

// confirmationSummary renders the collected record as the Y/N question shown
// at the final step. The same text is re-emitted verbatim for unrecognized
// confirmation input.
func confirmationSummary(mode Mode, record Record) string {
	var b strings.Builder
	b.WriteString("確認してください:\n")
	for _, field := range fieldsFor(mode) {
		b.WriteString(field.Label)
		b.WriteString(": ")
		b.WriteString(field.Value(record))
		b.WriteString("\n")
	}
	if mode == ModeAttendance {
		b.WriteString("勤怠打刻デバイス: ")
		b.WriteString(record.Device)
		b.WriteString("\n")
	}
	b.WriteString("この内容でよろしいですか? (Y/N) 例 Y")
	return b.String()
}
