package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jalad-shrimali/lane-split/store"
)

/* ───────────── GET /download/{upload}/{key} ───────────── */

func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	f, err := s.store.Get(vars["upload"], vars["key"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}

/* ───────────── GET /download/{upload} ───────────── */

// Files lists the download URLs of one upload.
func (s *Server) Files(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["upload"]
	keys, err := s.store.List(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(keys) == 0 {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}
	urls := make([]string, len(keys))
	for i, k := range keys {
		urls[i] = downloadURL(id, k)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": urls})
}
