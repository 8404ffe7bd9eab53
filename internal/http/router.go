package http

import (
	"net/http"
	"strings"
)

// RouterConfig assembles the webhook and admin endpoints. WebhookMiddleware
// typically carries signature verification; AdminMiddleware carries the
// admin-token check.
type RouterConfig struct {
	Webhook           *WebhookHandler
	Users             *UserHandler
	WebhookMiddleware []func(http.Handler) http.Handler
	AdminMiddleware   []func(http.Handler) http.Handler
}

// NewRouter builds the service's HTTP handler:
//   - POST /callback: inbound webhook deliveries
//   - GET /users, POST /users, DELETE /users/{id}: reminder registry admin
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Webhook != nil {
		mux.Handle("/callback", chain(cfg.WebhookMiddleware, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Webhook.Receive(w, r)
		})))
	}

	if cfg.Users != nil {
		mux.Handle("/users", chain(cfg.AdminMiddleware, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/users/", chain(cfg.AdminMiddleware, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Users.Delete(w, r, id)
		})))
	}

	return mux
}

func chain(middleware []func(http.Handler) http.Handler, handler http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] != nil {
			handler = middleware[i](handler)
		}
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
