package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/attendance-bot/internal/testfixtures"
)

// fakeEngine echoes a canned reply and records every inbound message.
type fakeEngine struct {
	reply    string
	err      error
	received []struct{ UserID, Text string }
}

func (e *fakeEngine) HandleMessage(_ context.Context, userID, text string) (string, error) {
	e.received = append(e.received, struct{ UserID, Text string }{userID, text})
	if e.err != nil {
		return "", e.err
	}
	return e.reply, nil
}

func postWebhook(handler *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Receive(rec, req)
	return rec
}

func TestWebhookReceiveDispatchesTextMessages(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{reply: "了解しました。"}
	notifier := testfixtures.NewRecordingNotifier()
	handler := NewWebhookHandler(engine, notifier, nil)

	rec := postWebhook(handler, `{
		"events": [
			{
				"type": "message",
				"replyToken": "token-1",
				"source": {"userId": "user-1"},
				"message": {"type": "text", "text": "勤怠"}
			}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(engine.received) != 1 {
		t.Fatalf("engine received %d messages, want 1", len(engine.received))
	}
	if got := engine.received[0]; got.UserID != "user-1" || got.Text != "勤怠" {
		t.Fatalf("engine received %+v", got)
	}

	messages := notifier.Messages()
	if len(messages) != 1 {
		t.Fatalf("notifier recorded %d messages, want 1", len(messages))
	}
	if msg := messages[0]; msg.Kind != "reply" || msg.To != "token-1" || msg.Text != "了解しました。" {
		t.Fatalf("notifier recorded %+v", msg)
	}
}

func TestWebhookReceiveSkipsNonTextEvents(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{reply: "ok"}
	notifier := testfixtures.NewRecordingNotifier()
	handler := NewWebhookHandler(engine, notifier, nil)

	rec := postWebhook(handler, `{
		"events": [
			{"type": "follow", "source": {"userId": "user-1"}},
			{"type": "message", "replyToken": "t", "source": {"userId": "user-1"}, "message": {"type": "sticker"}},
			{"type": "message", "replyToken": "t", "source": {"userId": ""}, "message": {"type": "text", "text": "hi"}}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(engine.received) != 0 {
		t.Fatalf("engine received %d messages, want 0", len(engine.received))
	}
	if len(notifier.Messages()) != 0 {
		t.Fatal("notifier recorded a delivery for skipped events")
	}
}

func TestWebhookReceiveProcessesRemainingEventsOnFailure(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{reply: "ok"}
	notifier := testfixtures.NewRecordingNotifier()
	notifier.FailFor["token-1"] = errors.New("reply rejected")
	handler := NewWebhookHandler(engine, notifier, nil)

	rec := postWebhook(handler, `{
		"events": [
			{"type": "message", "replyToken": "token-1", "source": {"userId": "user-1"}, "message": {"type": "text", "text": "a"}},
			{"type": "message", "replyToken": "token-2", "source": {"userId": "user-2"}, "message": {"type": "text", "text": "b"}}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(engine.received) != 2 {
		t.Fatalf("engine received %d messages, want 2", len(engine.received))
	}

	messages := notifier.Messages()
	if len(messages) != 1 || messages[0].To != "token-2" {
		t.Fatalf("notifier recorded %+v, want one delivery to token-2", messages)
	}
}

func TestWebhookReceiveRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	handler := NewWebhookHandler(&fakeEngine{}, testfixtures.NewRecordingNotifier(), nil)

	rec := postWebhook(handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookReceiveToleratesEngineError(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{err: errors.New("session corrupt")}
	notifier := testfixtures.NewRecordingNotifier()
	handler := NewWebhookHandler(engine, notifier, nil)

	rec := postWebhook(handler, `{
		"events": [
			{"type": "message", "replyToken": "t", "source": {"userId": "user-1"}, "message": {"type": "text", "text": "x"}}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite engine error", rec.Code)
	}
	if len(notifier.Messages()) != 0 {
		t.Fatal("notifier recorded a delivery for a failed message")
	}
}
