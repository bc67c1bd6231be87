// Package api exposes the HTTP surface of the journal service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"example.com/journal/internal/auth"
	"example.com/journal/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service   *domain.Service
	authCfg   auth.Config
	listLimit int
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, authCfg auth.Config, listLimit int) *Handler {
	if listLimit <= 0 {
		listLimit = domain.DefaultListLimit
	}
	return &Handler{service: service, authCfg: authCfg, listLimit: listLimit}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.register)
	mux.HandleFunc("/api/auth/login", h.login)
	mux.HandleFunc("/api/profile", h.profile)
	mux.HandleFunc("/api/sync/batch", h.syncBatch)
	mux.HandleFunc("/api/sync/last-sync", h.lastSync)
	mux.HandleFunc("/healthz", healthz)

	repo := h.service.Repo()
	registerResource[domain.Workout, *domain.Workout](mux, h, "/api/workouts", "workout record", repo.Workouts())
	registerResource[domain.Meal, *domain.Meal](mux, h, "/api/meals", "meal record", repo.Meals())
	registerResource[domain.SleepEntry, *domain.SleepEntry](mux, h, "/api/sleep", "sleep record", repo.Sleep())
	registerResource[domain.FocusSession, *domain.FocusSession](mux, h, "/api/focus", "focus session", repo.Focus())
	registerResource[domain.ReadingEntry, *domain.ReadingEntry](mux, h, "/api/reading", "reading record", repo.Reading())
	registerResource[domain.ReviewEntry, *domain.ReviewEntry](mux, h, "/api/reviews", "review entry", repo.Reviews())
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// CredentialsRequest is the payload for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the body for successful register and login calls.
type TokenResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "username and password are required")
		return
	}
	if len(req.Username) < 3 {
		writeError(w, http.StatusBadRequest, "validation_failed", "username must be at least 3 characters")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "validation_failed", "password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	user := &domain.User{
		ID:           newUserID(),
		Username:     req.Username,
		PasswordHash: hash,
	}
	if err := h.service.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "conflict", "username already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	token, err := auth.Issue(user.ID, h.authCfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{Token: token, UserID: user.ID, Username: user.Username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "username and password are required")
		return
	}

	user, err := h.service.UserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	// Unknown user and wrong password are indistinguishable on purpose.
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	token, err := auth.Issue(user.ID, h.authCfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, UserID: user.ID, Username: user.Username})
}

// ProfileView exposes the account fields a user may see about themselves.
type ProfileView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Nickname  *string   `json:"nickname"`
	Avatar    *string   `json:"avatar"`
	Signature *string   `json:"signature"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.service.Profile(r.Context(), ownerID)
		if err != nil {
			respondError(w, err, "user")
			return
		}
		writeJSON(w, http.StatusOK, toProfileView(user))
	case http.MethodPut:
		var patch domain.ProfilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		user, err := h.service.UpdateProfile(r.Context(), ownerID, patch)
		if err != nil {
			respondError(w, err, "user")
			return
		}
		writeJSON(w, http.StatusOK, toProfileView(user))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func toProfileView(user *domain.User) ProfileView {
	return ProfileView{
		ID:        user.ID,
		Username:  user.Username,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Signature: user.Signature,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// SyncBatchResponse reports per-kind counts for one applied batch.
type SyncBatchResponse struct {
	Success bool              `json:"success"`
	Synced  domain.SyncCounts `json:"synced"`
}

func (h *Handler) syncBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var batch domain.SyncBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	counts, err := h.service.SyncBatch(r.Context(), ownerID, batch)
	if err != nil {
		respondError(w, err, "sync batch")
		return
	}
	writeJSON(w, http.StatusOK, SyncBatchResponse{Success: true, Synced: counts})
}

// LastSyncResponse carries the owner's newest updated_at, null when the owner
// has no records yet.
type LastSyncResponse struct {
	LastSync *time.Time `json:"lastSync"`
}

func (h *Handler) lastSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	last, err := h.service.LastSync(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LastSyncResponse{LastSync: last})
}

func newUserID() string { return uuid.NewString() }

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return "", false
	}
	return claims.Subject, true
}

func respondError(w http.ResponseWriter, err error, label string) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", label+" not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", label+" belongs to another user")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
