package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"batepapo/internal/chat"
	"batepapo/internal/models"
	"batepapo/internal/registry"
)

// userHeader names the caller on every route that needs an identity. There
// is no authentication beyond it.
const userHeader = "user"

type API struct {
	registry *registry.Registry
	chat     *chat.Service
	log      *slog.Logger
}

func New(registry *registry.Registry, chatService *chat.Service, log *slog.Logger) *API {
	return &API{registry: registry, chat: chatService, log: log}
}

func (a *API) RegisterParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.registry.Register(r.Context(), req.Name); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *API) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	participants, err := a.registry.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, participants)
}

func (a *API) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req chat.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := a.chat.Post(r.Context(), r.Header.Get(userHeader), req); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *API) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	// A missing, malformed or non-positive limit means the full history.
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	messages, err := a.chat.List(r.Context(), r.Header.Get(userHeader), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, messages)
}

func (a *API) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	err := a.chat.Delete(r.Context(), r.Header.Get(userHeader), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HeartbeatHandler answers before the lastStatus write completes; only the
// existence check can fail the request.
func (a *API) HeartbeatHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.Heartbeat(r.Context(), r.Header.Get(userHeader)); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("failed to encode response", "err", err)
	}
}

// writeError maps the error taxonomy onto status codes. Anything outside the
// client-usage errors is a store fault: logged with detail, surfaced bare.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		a.writeJSON(w, http.StatusUnprocessableEntity, validationErr.Problems)
	case errors.Is(err, models.ErrNotRegistered):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrNameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		a.log.Error("store failure", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
