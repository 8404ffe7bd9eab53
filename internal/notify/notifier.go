// Package notify is the outbound message boundary. The core only depends on
// the Notifier interface; the LINE Messaging API client below is the thin
// production implementation.
package notify

import "context"

// Notifier delivers text messages back to chat users. Reply answers a single
// inbound event using its reply token; Push initiates contact, which the
// reminder scheduler uses.
type Notifier interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, userID, text string) error
}
