package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/attendance-bot/internal/auth"
	"github.com/example/attendance-bot/internal/logging"
)

// signatureHeader carries the webhook body signature computed by the
// messaging platform.
const signatureHeader = "X-Line-Signature"

// adminTokenHeader carries the plaintext admin token checked against the
// configured argon2id hash.
const adminTokenHeader = "X-Admin-Token"

// RequestLogger attaches a per-request logger to the context and records
// request start and completion.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// VerifySignature rejects webhook deliveries whose body does not carry a
// valid HMAC-SHA256 signature under the channel secret. The body is restored
// for downstream handlers.
func VerifySignature(channelSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
				return
			}
			r.Body.Close()

			if !validSignature(channelSecret, body, r.Header.Get(signatureHeader)) {
				responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSignature)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func validSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(expected, mac.Sum(nil))
}

// RequireAdminToken guards the registry endpoints. The presented token is
// verified against the stored argon2id hash; with no hash configured, the
// endpoints are disabled outright.
func RequireAdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				responder.writeError(r.Context(), w, http.StatusForbidden, nil)
				return
			}

			token := strings.TrimSpace(r.Header.Get(adminTokenHeader))
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAdminToken)
				return
			}

			if err := auth.VerifyToken(tokenHash, token); err != nil {
				if errors.Is(err, auth.ErrTokenMismatch) {
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "管理トークンが一致しません。"})
					return
				}
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "admin token verification failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
