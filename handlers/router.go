// Package handlers is the HTTP surface: an upload form, the conversion
// endpoint and per-lane downloads.
package handlers

import (
	"embed"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed static/index.html
var staticFS embed.FS

func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", index).Methods(http.MethodGet)
	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.Upload).Methods(http.MethodPost)
	r.HandleFunc("/download/{upload}", s.Files).Methods(http.MethodGet)
	r.HandleFunc("/download/{upload}/{key}", s.Download).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func index(w http.ResponseWriter, _ *http.Request) {
	page, _ := staticFS.ReadFile("static/index.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
