package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"example.com/journal/internal/domain"
)

// resource serves the four verbs every record kind shares. One generic
// implementation covers all six kinds; the kind only contributes its store
// and a label for error messages.
type resource[T any, P domain.RecordPtr[T]] struct {
	h     *Handler
	store domain.RecordStore[T]
	base  string
	label string
}

func registerResource[T any, P domain.RecordPtr[T]](mux *http.ServeMux, h *Handler, base, label string, store domain.RecordStore[T]) {
	rs := &resource[T, P]{h: h, store: store, base: base, label: label}
	mux.HandleFunc(base, rs.collection)
	mux.HandleFunc(base+"/", rs.byID)
}

func (rs *resource[T, P]) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rs.list(w, r)
	case http.MethodPost:
		rs.upsert(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (rs *resource[T, P]) byID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, rs.base+"/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing record id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rs.get(w, r, id)
	case http.MethodDelete:
		rs.delete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (rs *resource[T, P]) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	filter := domain.ListFilter{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
		Limit:     rs.h.listLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	recs, err := domain.ListRecords(r.Context(), rs.store, ownerID, filter)
	if err != nil {
		rs.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (rs *resource[T, P]) get(w http.ResponseWriter, r *http.Request, id string) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	rec, err := domain.GetRecord[T, P](r.Context(), rs.store, id, ownerID)
	if err != nil {
		rs.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (rs *resource[T, P]) upsert(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var rec T
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	id, err := domain.UpsertRecord[T, P](r.Context(), rs.store, ownerID, &rec)
	if err != nil {
		rs.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UpsertResponse{Success: true, ID: id})
}

func (rs *resource[T, P]) delete(w http.ResponseWriter, r *http.Request, id string) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := domain.DeleteRecord(r.Context(), rs.store, id, ownerID); err != nil {
		rs.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (rs *resource[T, P]) fail(w http.ResponseWriter, err error) {
	respondError(w, err, rs.label)
}

// UpsertResponse is the body for every successful record POST.
type UpsertResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
