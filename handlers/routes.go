package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"flavourkitchen/views"
)

// NewRouter wires the site pages, the JSON API, the image proxy and the
// operational endpoints. allowedOrigins applies to /api only.
func NewRouter(s *Site, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(Observe(s.Log))

	r.HandleFunc("/", s.Home).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{slug}", s.Recipe).Methods(http.MethodGet)
	r.HandleFunc("/categories/{slug}", s.Category).Methods(http.MethodGet)
	r.HandleFunc("/about", s.About).Methods(http.MethodGet)
	r.HandleFunc("/contact", s.ContactForm).Methods(http.MethodGet)
	r.HandleFunc("/contact", s.SubmitContactForm).Methods(http.MethodPost)

	if s.Images != nil {
		r.Handle(views.ResizePath, s.Images).Methods(http.MethodGet)
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServerFS(views.Static())))

	api := r.PathPrefix("/api").Subrouter()
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	api.Use(c.Handler)
	api.HandleFunc("/contact", s.ContactAPI).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/recipes", s.SearchRecipes).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/healthz", health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.notFound(w, req, "Page Not Found", "The page you're looking for doesn't exist.")
	})
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "flavourkitchen",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
