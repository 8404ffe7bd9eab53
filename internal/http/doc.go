// Package http provides the webhook transport and admin API for the bot.
//
// The router exposes:
//   - POST /callback: messaging-platform webhook deliveries. The body must
//     carry a valid HMAC-SHA256 signature in `X-Line-Signature`; text message
//     events are fed to the conversation engine and every produced reply is
//     sent through the outbound notifier. The endpoint always answers 200 for
//     a verified, well-formed envelope.
//   - GET /users, POST /users, DELETE /users/{id}: reminder-recipient
//     registry management, guarded by the `X-Admin-Token` header verified
//     against the configured argon2id hash. Payloads use the `userDTO`
//     defined in user_handler.go.
//
// Request/response DTOs live alongside their handlers so tests and
// documentation share the same ground truth.
package http
