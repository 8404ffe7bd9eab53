package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/attendance-bot/internal/logging"
)

// Gateway commits a completed record to durable storage. A commit is atomic:
// either the whole record is written or nothing is. Any error is treated as
// retryable by way of the user re-confirming; the engine itself never
// retries.
type Gateway interface {
	SaveAttendance(ctx context.Context, userID string, record Record) error
	SaveLeave(ctx context.Context, userID string, record Record) error
}

// Reply texts that do not belong to a single field descriptor.
const (
	replyAttendanceEntered = "勤怠入力モードに入りました。"
	replyLeaveEntered      = "休暇入力モードに入りました。"
	replyRestart           = "もう一度最初から入力してください。"
	replyHelp              = "勤怠または休暇情報を入力する場合は、「勤怠」または「休暇」というメッセージを書いてください。"

	replyAttendanceSaved      = "勤怠情報が保存されました。"
	replyAttendanceSaveFailed = "勤怠情報の保存に失敗しました。もう一度お試しください。"
	replyLeaveSaved           = "休暇情報が保存されました。"
	replyLeaveSaveFailed      = "休暇情報の保存に失敗しました。もう一度お試しください。"
)

// Engine interprets inbound messages against the per-mode field tables and
// drives each session through collection, confirmation, and persistence. It
// is the only component that mutates sessions.
type Engine struct {
	store   *Store
	gateway Gateway
	logger  *slog.Logger
}

// NewEngine wires the engine with its session store and persistence gateway.
func NewEngine(store *Store, gateway Gateway, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, gateway: gateway, logger: logger}
}

// HandleMessage processes one inbound message for userID and returns the
// reply text. The whole step runs under the user's session lock, so messages
// from the same user are applied in delivery order.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	if e == nil || e.store == nil {
		return "", fmt.Errorf("conversation: engine not configured")
	}

	text = strings.TrimSpace(text)

	var reply string
	err := e.store.Do(userID, func(sess *Session) error {
		r, err := e.step(ctx, sess, text)
		reply = r
		return err
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (e *Engine) step(ctx context.Context, sess *Session, text string) (string, error) {
	switch sess.State() {
	case StateIdle:
		return e.stepIdle(ctx, sess, text)
	case StateCollecting:
		return e.stepCollecting(ctx, sess, text)
	case StateConfirming:
		return e.stepConfirming(ctx, sess, text)
	default:
		return "", fmt.Errorf("conversation: session %q in unknown state %q", sess.UserID, sess.State())
	}
}

func (e *Engine) stepIdle(ctx context.Context, sess *Session, text string) (string, error) {
	var mode Mode
	var entered string

	switch text {
	case KeywordAttendance:
		mode = ModeAttendance
		entered = replyAttendanceEntered
	case KeywordLeave:
		mode = ModeLeave
		entered = replyLeaveEntered
	default:
		return replyHelp, nil
	}

	if err := sess.Begin(ctx, mode); err != nil {
		return "", err
	}
	return entered + fieldsFor(mode)[0].Prompt, nil
}

func (e *Engine) stepCollecting(ctx context.Context, sess *Session, text string) (string, error) {
	fields := fieldsFor(sess.Mode)
	if sess.Step < 1 || sess.Step > len(fields) {
		return "", fmt.Errorf("conversation: session %q step %d out of range for mode %q", sess.UserID, sess.Step, sess.Mode)
	}

	field := fields[sess.Step-1]
	value, ok := field.Validate(text)
	if !ok {
		// Rejection leaves step and record untouched.
		return field.Hint + "\n" + field.Prompt, nil
	}

	field.Assign(&sess.Record, value)

	if sess.Step < len(fields) {
		sess.Step++
		return fields[sess.Step-1].Prompt, nil
	}

	if sess.Mode == ModeAttendance {
		sess.Record.Device = DeviceTag
	}
	if err := sess.Complete(ctx); err != nil {
		return "", err
	}
	return confirmationSummary(sess.Mode, sess.Record), nil
}

func (e *Engine) stepConfirming(ctx context.Context, sess *Session, text string) (string, error) {
	switch ParseConfirmation(text) {
	case ConfirmationYes:
		return e.commit(ctx, sess)
	case ConfirmationNo:
		if err := sess.Restart(ctx); err != nil {
			return "", err
		}
		return replyRestart + fieldsFor(sess.Mode)[0].Prompt, nil
	default:
		return confirmationSummary(sess.Mode, sess.Record), nil
	}
}

func (e *Engine) commit(ctx context.Context, sess *Session) (string, error) {
	logger := e.engineLogger(ctx, "commit", "user_id", sess.UserID, "mode", string(sess.Mode))

	var saveErr error
	var saved, failed string
	switch sess.Mode {
	case ModeAttendance:
		saveErr = e.gateway.SaveAttendance(ctx, sess.UserID, sess.Record)
		saved, failed = replyAttendanceSaved, replyAttendanceSaveFailed
	case ModeLeave:
		saveErr = e.gateway.SaveLeave(ctx, sess.UserID, sess.Record)
		saved, failed = replyLeaveSaved, replyLeaveSaveFailed
	default:
		return "", fmt.Errorf("conversation: session %q confirming with mode %q", sess.UserID, sess.Mode)
	}

	if saveErr != nil {
		// The session stays at the confirmation step so the user can retry
		// without re-entering every field. The cause is logged, never shown.
		logger.ErrorContext(ctx, "failed to persist record", "error", saveErr)
		return failed, nil
	}

	if err := sess.Confirm(ctx); err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "record persisted")
	return saved, nil
}

func (e *Engine) engineLogger(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = e.logger
	}
	pairs := []any{"component", "conversation", "operation", operation}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}
