package conversation

import (
	"context"
	"strings"
	"testing"
)

// fakeGateway records committed records and can fail on demand.
type fakeGateway struct {
	attendance []Record
	leaves     []Record
	byUser     map[string]int

	failAttendance error
	failLeave      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{byUser: make(map[string]int)}
}

func (g *fakeGateway) SaveAttendance(_ context.Context, userID string, record Record) error {
	if g.failAttendance != nil {
		return g.failAttendance
	}
	g.attendance = append(g.attendance, record)
	g.byUser[userID]++
	return nil
}

func (g *fakeGateway) SaveLeave(_ context.Context, userID string, record Record) error {
	if g.failLeave != nil {
		return g.failLeave
	}
	g.leaves = append(g.leaves, record)
	g.byUser[userID]++
	return nil
}

func mustReply(t *testing.T, engine *Engine, userID, text string) string {
	t.Helper()
	reply, err := engine.HandleMessage(context.Background(), userID, text)
	if err != nil {
		t.Fatalf("HandleMessage(%q, %q) returned error: %v", userID, text, err)
	}
	return reply
}

var attendanceInputs = []string{"山田太郎", "2024-01-01", "8:00", "17:00", "12:00", "13:00", "アプリ開発"}

func runAttendanceCollection(t *testing.T, engine *Engine, userID string) string {
	t.Helper()
	reply := mustReply(t, engine, userID, KeywordAttendance)
	for _, input := range attendanceInputs {
		reply = mustReply(t, engine, userID, input)
	}
	return reply
}

func TestEngineAttendanceFlow(t *testing.T) {
	gateway := newFakeGateway()
	store := NewStore()
	engine := NewEngine(store, gateway, nil)

	reply := mustReply(t, engine, "user-1", KeywordAttendance)
	if !strings.HasPrefix(reply, replyAttendanceEntered) {
		t.Fatalf("keyword reply = %q, want prefix %q", reply, replyAttendanceEntered)
	}
	if !strings.Contains(reply, "名前を入力してください") {
		t.Fatalf("keyword reply %q does not include the first prompt", reply)
	}

	for i, input := range attendanceInputs {
		reply = mustReply(t, engine, "user-1", input)
		if i < len(attendanceInputs)-1 && !strings.Contains(reply, attendanceFields[i+1].Prompt) {
			t.Fatalf("after field %d reply = %q, want next prompt %q", i, reply, attendanceFields[i+1].Prompt)
		}
	}

	if !strings.HasPrefix(reply, "確認してください:") {
		t.Fatalf("final collection reply = %q, want confirmation summary", reply)
	}
	for _, want := range []string{"名前: 山田太郎", "勤務日: 2024-01-01", "出勤時間: 08:00", "勤怠打刻デバイス: SP"} {
		if !strings.Contains(reply, want) {
			t.Fatalf("confirmation summary %q is missing line %q", reply, want)
		}
	}
	if len(gateway.attendance) != 0 {
		t.Fatalf("gateway invoked before confirmation: %d records", len(gateway.attendance))
	}

	reply = mustReply(t, engine, "user-1", "y")
	if reply != replyAttendanceSaved {
		t.Fatalf("confirmation reply = %q, want %q", reply, replyAttendanceSaved)
	}
	if len(gateway.attendance) != 1 {
		t.Fatalf("gateway received %d attendance records, want 1", len(gateway.attendance))
	}

	saved := gateway.attendance[0]
	want := Record{
		Name:        "山田太郎",
		WorkDay:     "2024-01-01",
		WorkStart:   "08:00",
		WorkEnd:     "17:00",
		BreakStart:  "12:00",
		BreakEnd:    "13:00",
		WorkSummary: "アプリ開発",
		Device:      DeviceTag,
	}
	if saved != want {
		t.Fatalf("persisted record = %+v, want %+v", saved, want)
	}

	sess, ok := store.Get("user-1")
	if !ok {
		t.Fatal("session disappeared after confirmation")
	}
	if !sess.Idle() {
		t.Fatalf("session state after confirmation = %q, want idle", sess.State())
	}
}

func TestEngineLeaveFlow(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(NewStore(), gateway, nil)

	reply := mustReply(t, engine, "user-2", KeywordLeave)
	if !strings.HasPrefix(reply, replyLeaveEntered) {
		t.Fatalf("keyword reply = %q, want prefix %q", reply, replyLeaveEntered)
	}

	mustReply(t, engine, "user-2", "20240815")
	reply = mustReply(t, engine, "user-2", "午前休")
	if !strings.Contains(reply, "休暇日: 2024-08-15") || !strings.Contains(reply, "休暇種類: 午前休") {
		t.Fatalf("confirmation summary = %q, want collected leave values", reply)
	}

	reply = mustReply(t, engine, "user-2", "Y")
	if reply != replyLeaveSaved {
		t.Fatalf("confirmation reply = %q, want %q", reply, replyLeaveSaved)
	}
	if len(gateway.leaves) != 1 {
		t.Fatalf("gateway received %d leave records, want 1", len(gateway.leaves))
	}
	if got := gateway.leaves[0]; got.LeaveDate != "2024-08-15" || got.LeaveType != "午前休" {
		t.Fatalf("persisted leave record = %+v", got)
	}
}

func TestEngineHelpOutsideCollection(t *testing.T) {
	engine := NewEngine(NewStore(), newFakeGateway(), nil)

	for _, text := range []string{"こんにちは", "", "attendance", "勤怠です"} {
		if reply := mustReply(t, engine, "user-3", text); reply != replyHelp {
			t.Fatalf("reply to %q = %q, want help text", text, reply)
		}
	}
}

func TestEngineInvalidInputRepeatsPrompt(t *testing.T) {
	engine := NewEngine(NewStore(), newFakeGateway(), nil)
	store := engine.store

	mustReply(t, engine, "user-4", KeywordAttendance)
	mustReply(t, engine, "user-4", "山田太郎")

	// Repeated invalid dates must not advance the step or touch the record.
	for i := 0; i < 3; i++ {
		reply := mustReply(t, engine, "user-4", "2024-13-01")
		if !strings.Contains(reply, "日付は YYYYMMDD または YYYY-MM-DD 形式で入力してください。") {
			t.Fatalf("invalid date reply = %q, want hint", reply)
		}
		if !strings.Contains(reply, "勤務日を入力してください") {
			t.Fatalf("invalid date reply = %q, want repeated prompt", reply)
		}
	}

	sess, _ := store.Get("user-4")
	if sess.Step != 2 {
		t.Fatalf("step after rejections = %d, want 2", sess.Step)
	}
	if sess.Record.WorkDay != "" {
		t.Fatalf("record mutated by rejected input: %+v", sess.Record)
	}

	reply := mustReply(t, engine, "user-4", "20240101")
	if !strings.Contains(reply, "出勤時間を入力してください") {
		t.Fatalf("valid date reply = %q, want next prompt", reply)
	}
}

func TestEngineRestartOnDecline(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(NewStore(), gateway, nil)

	runAttendanceCollection(t, engine, "user-5")
	reply := mustReply(t, engine, "user-5", "n")
	if !strings.HasPrefix(reply, replyRestart) {
		t.Fatalf("decline reply = %q, want prefix %q", reply, replyRestart)
	}
	if !strings.Contains(reply, "名前を入力してください") {
		t.Fatalf("decline reply = %q, want first prompt", reply)
	}
	if len(gateway.attendance) != 0 {
		t.Fatal("gateway invoked after decline")
	}

	sess, _ := engine.store.Get("user-5")
	if sess.State() != StateCollecting || sess.Step != 1 || sess.Mode != ModeAttendance {
		t.Fatalf("session after decline = state %q step %d mode %q", sess.State(), sess.Step, sess.Mode)
	}
	if sess.Record != (Record{}) {
		t.Fatalf("record not cleared on decline: %+v", sess.Record)
	}

	// The second pass still commits exactly once.
	for _, input := range attendanceInputs {
		mustReply(t, engine, "user-5", input)
	}
	if got := mustReply(t, engine, "user-5", "y"); got != replyAttendanceSaved {
		t.Fatalf("second confirmation reply = %q", got)
	}
	if len(gateway.attendance) != 1 {
		t.Fatalf("gateway received %d records after restart, want 1", len(gateway.attendance))
	}
}

func TestEngineUnrecognizedConfirmationRepeatsSummary(t *testing.T) {
	engine := NewEngine(NewStore(), newFakeGateway(), nil)

	summary := runAttendanceCollection(t, engine, "user-6")
	for _, text := range []string{"yes", "はい", "maybe", ""} {
		if reply := mustReply(t, engine, "user-6", text); reply != summary {
			t.Fatalf("reply to %q = %q, want the summary re-emitted", text, reply)
		}
	}
}

func TestEnginePersistenceFailureKeepsConfirmation(t *testing.T) {
	gateway := newFakeGateway()
	gateway.failAttendance = context.DeadlineExceeded
	engine := NewEngine(NewStore(), gateway, nil)

	runAttendanceCollection(t, engine, "user-7")
	reply := mustReply(t, engine, "user-7", "y")
	if reply != replyAttendanceSaveFailed {
		t.Fatalf("failed commit reply = %q, want %q", reply, replyAttendanceSaveFailed)
	}

	sess, _ := engine.store.Get("user-7")
	if sess.State() != StateConfirming {
		t.Fatalf("session state after failed commit = %q, want confirming", sess.State())
	}

	// Once storage recovers a retry from the same confirmation succeeds.
	gateway.failAttendance = nil
	if got := mustReply(t, engine, "user-7", "y"); got != replyAttendanceSaved {
		t.Fatalf("retry reply = %q, want %q", got, replyAttendanceSaved)
	}
	if len(gateway.attendance) != 1 {
		t.Fatalf("gateway received %d records, want 1", len(gateway.attendance))
	}
}

func TestEngineKeywordDuringCollectionIsField(t *testing.T) {
	engine := NewEngine(NewStore(), newFakeGateway(), nil)

	mustReply(t, engine, "user-8", KeywordAttendance)
	// At the name step the keyword is just a non-empty value.
	reply := mustReply(t, engine, "user-8", KeywordLeave)
	if !strings.Contains(reply, "勤務日を入力してください") {
		t.Fatalf("reply = %q, want next prompt after accepting the text", reply)
	}

	sess, _ := engine.store.Get("user-8")
	if sess.Record.Name != KeywordLeave {
		t.Fatalf("name = %q, want %q stored verbatim", sess.Record.Name, KeywordLeave)
	}
	if sess.Mode != ModeAttendance {
		t.Fatalf("mode = %q, want attendance to stay active", sess.Mode)
	}
}

func TestEngineUsersAreIsolated(t *testing.T) {
	gateway := newFakeGateway()
	engine := NewEngine(NewStore(), gateway, nil)

	mustReply(t, engine, "alice", KeywordAttendance)
	mustReply(t, engine, "bob", KeywordLeave)
	mustReply(t, engine, "alice", "山田太郎")
	mustReply(t, engine, "bob", "2024-08-15")

	aliceSess, _ := engine.store.Get("alice")
	bobSess, _ := engine.store.Get("bob")
	if aliceSess.Mode != ModeAttendance || aliceSess.Step != 2 {
		t.Fatalf("alice session = mode %q step %d", aliceSess.Mode, aliceSess.Step)
	}
	if bobSess.Mode != ModeLeave || bobSess.Step != 2 {
		t.Fatalf("bob session = mode %q step %d", bobSess.Mode, bobSess.Step)
	}
	if bobSess.Record.LeaveDate != "2024-08-15" || aliceSess.Record.LeaveDate != "" {
		t.Fatal("leave date leaked across sessions")
	}
}
