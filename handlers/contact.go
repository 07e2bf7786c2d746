package handlers

import (
	"errors"
	"io"
	"net/http"

	"flavourkitchen/contact"
)

const (
	maxContactBody = 64 * 1024
	msgTooLarge    = "Message is too large."
)

// ContactAPI is POST /api/contact: {name, email, subject, message} in,
// {success: true} or {error} out.
func (s *Site) ContactAPI(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContactBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": msgTooLarge})
		return
	}
	if err != nil {
		s.logFor(r).ErrorContext(r.Context(), "read contact body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": contact.MsgUnexpected})
		return
	}

	sub, err := contact.ParseSubmission(body)
	if err == nil {
		err = s.Relay.Deliver(r.Context(), sub)
	}
	if err != nil {
		if !errors.Is(err, contact.ErrInvalid) && !errors.Is(err, contact.ErrNotConfigured) && !errors.Is(err, contact.ErrProvider) {
			s.logFor(r).ErrorContext(r.Context(), "contact form error", "error", err)
		}
		status, msg := contact.StatusFor(err)
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
