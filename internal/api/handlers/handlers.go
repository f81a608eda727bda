// Package handlers exposes the payment session to the UI layer over HTTP.
// The handlers translate between HTTP and session actions; all state lives
// in the session.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arnavkapoor/bridgepay/internal/api/middleware"
	"github.com/arnavkapoor/bridgepay/internal/session"
)

// maxUploadBytes bounds the raw receipt photo size; anything larger than this
// is a client error, not something to pass to image preparation.
const maxUploadBytes = 10 << 20

// SessionHandler handles payment-session endpoints.
type SessionHandler struct {
	session *session.Session
	log     zerolog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(s *session.Session, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{session: s, log: log}
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// ListTransactions handles GET /api/transactions.
func (h *SessionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := h.session.Transactions()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// StartScan handles POST /api/scan/start.
func (h *SessionHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	if err := h.session.StartScan(); err != nil {
		h.writeActionError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Scan handles POST /api/scan. It accepts a multipart form with an "image"
// field, runs the scan pipeline and returns the resulting session view. Scan
// failures are part of the normal flow - the session stays on the scanner
// with an error message - so they respond 422 with the view attached rather
// than a bare error.
func (h *SessionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "An 'image' file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded image")
		return
	}

	if err := h.session.Scan(r.Context(), data); err != nil {
		if errors.Is(err, session.ErrInvalidTransition) || errors.Is(err, session.ErrScanInFlight) {
			h.writeActionError(w, err)
			return
		}
		// Classified scan failure: state is Scanning with a message.
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, h.session.Snapshot())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// ConfirmPreview handles POST /api/payment/confirm.
func (h *SessionHandler) ConfirmPreview(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ConfirmPreview(); err != nil {
		h.writeActionError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Authenticate handles POST /api/payment/authenticate. The settlement
// sequence runs to completion before the response is written.
func (h *SessionHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.session.Authenticate(r.Context(), req.PIN); err != nil {
		h.writeActionError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Cancel handles POST /api/session/cancel.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Cancel(); err != nil {
		h.writeActionError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// Dismiss handles POST /api/session/dismiss.
func (h *SessionHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.session.Dismiss()
	middleware.WriteJSON(w, http.StatusOK, h.session.Snapshot())
}

// writeActionError maps session errors onto HTTP statuses.
func (h *SessionHandler) writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidPIN):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrScanInFlight),
		errors.Is(err, session.ErrSettling):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("Session action failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
