package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
)

// Conversation states tracked per session.
const (
	StateIdle       = "idle"
	StateCollecting = "collecting"
	StateConfirming = "confirming"
)

const (
	eventBegin    = "begin"
	eventComplete = "complete"
	eventConfirm  = "confirm"
	eventRestart  = "restart"
)

// Session is one user's in-progress conversational state: the active mode,
// the position within that mode's field table, and the partially collected
// record. The coarse idle/collecting/confirming progression is enforced by a
// per-session state machine so illegal jumps surface as errors instead of
// silently corrupting the step pointer.
type Session struct {
	UserID string
	Mode   Mode
	Step   int
	Record Record

	mu      sync.Mutex
	machine *fsm.FSM
}

// NewSession returns an idle session for the given user.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		Mode:   ModeNone,
		machine: fsm.NewFSM(
			StateIdle,
			fsm.Events{
				{Name: eventBegin, Src: []string{StateIdle}, Dst: StateCollecting},
				{Name: eventComplete, Src: []string{StateCollecting}, Dst: StateConfirming},
				{Name: eventConfirm, Src: []string{StateConfirming}, Dst: StateIdle},
				{Name: eventRestart, Src: []string{StateConfirming}, Dst: StateCollecting},
			},
			fsm.Callbacks{},
		),
	}
}

// State reports the current conversation state.
func (s *Session) State() string {
	return s.machine.Current()
}

// Idle reports whether no collection is in progress.
func (s *Session) Idle() bool {
	return s.machine.Is(StateIdle)
}

// Begin enters collection mode at the first field with an empty record.
func (s *Session) Begin(ctx context.Context, mode Mode) error {
	if mode != ModeAttendance && mode != ModeLeave {
		return fmt.Errorf("conversation: cannot begin mode %q", mode)
	}
	if err := s.machine.Event(ctx, eventBegin); err != nil {
		return fmt.Errorf("conversation: begin: %w", err)
	}
	s.Mode = mode
	s.Step = 1
	s.Record = Record{}
	return nil
}

// Complete moves a fully collected session to the confirmation step.
func (s *Session) Complete(ctx context.Context) error {
	if !s.Record.Complete(s.Mode) {
		return fmt.Errorf("conversation: record for mode %q is incomplete", s.Mode)
	}
	if err := s.machine.Event(ctx, eventComplete); err != nil {
		return fmt.Errorf("conversation: complete: %w", err)
	}
	return nil
}

// Confirm folds a persisted session back to idle and discards its record.
func (s *Session) Confirm(ctx context.Context) error {
	if err := s.machine.Event(ctx, eventConfirm); err != nil {
		return fmt.Errorf("conversation: confirm: %w", err)
	}
	s.Mode = ModeNone
	s.Step = 0
	s.Record = Record{}
	return nil
}

// Restart clears the record and returns to the first field of the same mode.
func (s *Session) Restart(ctx context.Context) error {
	if err := s.machine.Event(ctx, eventRestart); err != nil {
		return fmt.Errorf("conversation: restart: %w", err)
	}
	s.Step = 1
	s.Record = Record{}
	return nil
}
