package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/jalad-shrimali/lane-split/config"
	"github.com/jalad-shrimali/lane-split/osparis"
	"github.com/jalad-shrimali/lane-split/store"
)

const (
	csvType  = "text/csv"
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	workbookKey  = "workbook"
	workbookName = "OS_2024_Paris_lanes.xlsx"
)

// Server converts uploads and serves their downloads.
type Server struct {
	cfg   *config.Config
	store *store.Store
}

func NewServer(cfg *config.Config, st *store.Store) *Server {
	return &Server{cfg: cfg, store: st}
}

// Tab is one preview tab of an upload.
type Tab struct {
	Name     string     `json:"name"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	RowCount int        `json:"row_count"`
	FileName string     `json:"file_name,omitempty"`
	Download string     `json:"download,omitempty"`
}

// UploadResponse lists the original tab first, then one tab per lane.
type UploadResponse struct {
	UploadID string `json:"upload_id"`
	Tabs     []Tab  `json:"tabs"`
	Workbook string `json:"workbook"`
	Message  string `json:"message,omitempty"`
}

/* ───────────── POST /upload ───────────── */

func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}

	opt, err := s.cfg.Conversion.Options(r.FormValue("profile"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fh, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer fh.Close()

	res, err := osparis.Convert(fh, opt)
	if errors.Is(err, osparis.ErrParse) {
		log.Printf("upload %q rejected: %v", hdr.Filename, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	files, err := s.encode(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "conversion failed: "+err.Error())
		return
	}
	id, err := s.store.Put(files)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("upload %s (%q): %d rows, %d lanes", id, hdr.Filename, len(res.Original.Rows), len(res.Lanes))
	writeJSON(w, http.StatusOK, s.response(id, res, files))
}

// encode renders every lane CSV plus the workbook; lane keys are slot numbers.
func (s *Server) encode(res *osparis.Result) ([]store.File, error) {
	files := make([]store.File, 0, len(res.Lanes)+1)
	for _, l := range res.Lanes {
		b, err := res.Encode(l)
		if err != nil {
			return nil, fmt.Errorf("lane %d: %w", l.Index, err)
		}
		files = append(files, store.File{
			Key:         strconv.Itoa(l.Index),
			Filename:    osparis.FileName(s.cfg.Server.FileTemplate, l.Name),
			ContentType: csvType,
			Data:        b,
		})
	}
	book, err := res.Workbook()
	if err != nil {
		return nil, fmt.Errorf("workbook: %w", err)
	}
	files = append(files, store.File{Key: workbookKey, Filename: workbookName, ContentType: xlsxType, Data: book})
	return files, nil
}

func (s *Server) response(id string, res *osparis.Result, files []store.File) UploadResponse {
	resp := UploadResponse{
		UploadID: id,
		Tabs:     []Tab{s.preview(osparis.OriginalTab, res.Original)},
		Workbook: downloadURL(id, workbookKey),
	}
	for i, l := range res.Lanes {
		tab := s.preview(l.Name, l.Table)
		tab.FileName = files[i].Filename
		tab.Download = downloadURL(id, files[i].Key)
		resp.Tabs = append(resp.Tabs, tab)
	}
	if res.Empty() {
		resp.Message = osparis.NoLanesMessage
	}
	return resp
}

func (s *Server) preview(name string, t *osparis.Table) Tab {
	rows := t.Rows
	if n := s.cfg.Server.PreviewRows; n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		rows = [][]string{}
	}
	return Tab{Name: name, Columns: t.Columns, Rows: rows, RowCount: len(t.Rows)}
}

func downloadURL(id, key string) string {
	return "/download/" + id + "/" + key
}
