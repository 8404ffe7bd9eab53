package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/attendance-bot/internal/persistence"
)

// UserHandler exposes the reminder-recipient registry over the admin API.
type UserHandler struct {
	registry    persistence.UserRegistry
	idGenerator func() string
	now         func() time.Time
	responder   responder
}

// NewUserHandler wires the registry endpoints with injected ID and time
// sources.
func NewUserHandler(registry persistence.UserRegistry, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserHandler {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserHandler{registry: registry, idGenerator: idGenerator, now: now, responder: newResponder(logger)}
}

type registerUserRequest struct {
	LineID      string `json:"line_id"`
	DisplayName string `json:"display_name"`
}

type userDTO struct {
	ID          string `json:"id"`
	LineID      string `json:"line_id"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	req.LineID = strings.TrimSpace(req.LineID)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.LineID == "" || req.DisplayName == "" {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{Message: "line_id と display_name は必須です。"})
		return
	}

	now := h.now().UTC()
	user := persistence.RegisteredUser{
		ID:          h.idGenerator(),
		LineID:      req.LineID,
		DisplayName: req.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.registry.RegisterUser(r.Context(), user); err != nil {
		h.responder.handleRegistryError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toUserDTO(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	users, err := h.registry.ListUsers(r.Context())
	if err != nil {
		h.responder.handleRegistryError(r.Context(), w, err)
		return
	}

	dtos := make([]userDTO, 0, len(users))
	for _, user := range users {
		dtos = append(dtos, toUserDTO(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string][]userDTO{"users": dtos})
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.registry == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	if err := h.registry.DeleteUser(r.Context(), id); err != nil {
		h.responder.handleRegistryError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func toUserDTO(user persistence.RegisteredUser) userDTO {
	return userDTO{
		ID:          user.ID,
		LineID:      user.LineID,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
