package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"flavourkitchen/cms"
	"flavourkitchen/contact"
	"flavourkitchen/logger"
	"flavourkitchen/views"
)

// Site holds everything the page and API handlers need. Each request reads
// its own snapshot of content; nothing here is mutated after construction.
type Site struct {
	Repo   cms.Repository
	Views  *views.Renderer
	Relay  *contact.Relay
	Images *ImageProxy
	Log    *slog.Logger
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.Views.Render(w, status, page, data); err != nil {
		s.logFor(r).ErrorContext(r.Context(), "render page", "page", page, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request, title, message string) {
	s.render(w, r, http.StatusNotFound, "status", views.StatusPage{
		Meta:    views.Meta{Title: title},
		Heading: title,
		Message: message,
	})
}

// fetchFailed logs an upstream read failure and renders the generic error
// page. The upstream cause never reaches the response.
func (s *Site) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logFor(r).ErrorContext(r.Context(), "content fetch failed", "path", r.URL.Path, "error", err, "cause", causeOf(err))
	s.render(w, r, http.StatusInternalServerError, "status", views.StatusPage{
		Meta:    views.Meta{Title: "Something went wrong"},
		Heading: "Something went wrong",
		Message: "We couldn't load this page right now. Please try again in a moment.",
	})
}

// logFor returns the site logger tagged with the request id.
func (s *Site) logFor(r *http.Request) *slog.Logger {
	return logger.WithRequestID(r.Context(), s.Log)
}

func causeOf(err error) string {
	var fe *cms.FetchError
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
