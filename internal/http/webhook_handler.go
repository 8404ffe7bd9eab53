package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/attendance-bot/internal/notify"
)

// MessageHandler processes one inbound text message and produces the reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, userID, text string) (string, error)
}

// WebhookHandler receives the messaging platform's event envelope, feeds
// text messages to the conversation engine, and sends each reply through the
// outbound notifier.
type WebhookHandler struct {
	engine    MessageHandler
	notifier  notify.Notifier
	responder responder
}

// NewWebhookHandler wires the webhook endpoint.
func NewWebhookHandler(engine MessageHandler, notifier notify.Notifier, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{engine: engine, notifier: notifier, responder: newResponder(logger)}
}

type webhookEnvelope struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// Receive handles POST /webhook. The platform expects 200 for processed
// deliveries; per-event failures are logged and do not fail the batch, so a
// single bad event cannot trigger redelivery of its siblings.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var envelope webhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	for _, event := range envelope.Events {
		h.handleEvent(r.Context(), event)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleEvent(ctx context.Context, event webhookEvent) {
	if event.Type != "message" || event.Message.Type != "text" {
		return
	}
	if event.Source.UserID == "" {
		return
	}

	logger := h.responder.loggerFor(ctx).With("component", "webhook", "user_id", event.Source.UserID)

	reply, err := h.engine.HandleMessage(ctx, event.Source.UserID, event.Message.Text)
	if err != nil {
		logger.ErrorContext(ctx, "failed to handle message", "error", err)
		return
	}

	if h.notifier == nil || reply == "" {
		return
	}
	if err := h.notifier.Reply(ctx, event.ReplyToken, reply); err != nil {
		logger.ErrorContext(ctx, "failed to deliver reply", "error", err)
	}
}
