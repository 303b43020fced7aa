package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"go.uber.org/zap"

	"github.com/KaramelBytes/specimen-cli/internal/parser"
	"github.com/KaramelBytes/specimen-cli/internal/processor"
	"github.com/KaramelBytes/specimen-cli/internal/report"
	"github.com/KaramelBytes/specimen-cli/internal/specimen"
)

// Routes returns the HTTP handler for the dashboard and its API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("GET /charts/{file}", s.handleChart)
	mux.HandleFunc("GET /charts.html", s.handleInteractive)
	mux.HandleFunc("GET /export.csv", s.handleExport)
	return s.logRequests(mux)
}

// statsResponse is the JSON shape of /api/stats.
type statsResponse struct {
	ID       string             `json:"id,omitempty"`
	Name     string             `json:"name,omitempty"`
	LoadedAt *time.Time         `json:"loadedAt,omitempty"`
	Overview processor.Overview `json:"overview"`
	Stats    processor.Bundle   `json:"stats"`
	Data     *specimen.Dataset  `json:"data,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Index   *int     `json:"index,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, r.URL.Query().Get("msg"), "")
}

func (s *Server) renderPage(w http.ResponseWriter, status int, msg, errMsg string) {
	page := report.Page{Message: msg, Error: errMsg, Charts: true}
	if snap := s.Current(); snap != nil {
		page.Loaded = true
		page.LoadID = snap.ID
		page.LoadedAt = snap.LoadedAt
		page.Summary = snap.Summary
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := report.Dashboard(w, page); err != nil {
		s.log.Error("render dashboard", zap.Error(err))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.maxUpload))
			return
		}
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("missing upload field \"file\": %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	name := filepath.Base(header.Filename)
	ds, err := parseUpload(name, data, s.parseOpt)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, parser.ErrUnsupported) {
			status = http.StatusUnsupportedMediaType
		}
		s.fail(w, r, status, err)
		return
	}

	id := uuid.NewString()
	snap, err := s.load(id, name, ds)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	s.keepUpload(id, name, data)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, s.statsOf(snap, false))
		return
	}
	msg := fmt.Sprintf("Loaded %s (%d specimens)", snap.Name, snap.Data.Len())
	http.Redirect(w, r, "/?msg="+urlEscape(msg), http.StatusSeeOther)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.Current()
	if snap == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no dataset loaded"})
		return
	}
	writeJSON(w, http.StatusOK, s.statsOf(snap, r.URL.Query().Get("data") == "1"))
}

// handleProcess normalizes and summarizes a JSON array of row objects
// without replacing the loaded dataset.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode body: %v", err)})
		return
	}
	ds, err := s.proc.Process(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorOf(err))
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Overview: s.proc.Overview(ds),
		Stats:    s.proc.Summarize(ds),
		Data:     ds,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	field, ok := strings.CutSuffix(file, ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	snap := s.Current()
	if snap == nil {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	sec, ok := report.SectionFor(snap.Summary.Bundle, field)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var (
		png []byte
		err error
	)
	if field == "class" {
		png, err = report.PieChart(sec.Title, sec.Rows)
	} else {
		png, err = report.BarChart(sec.Title, sec.Rows)
	}
	if err != nil {
		if errors.Is(err, report.ErrNoData) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("render chart", zap.String("field", field), zap.Error(err))
		http.Error(w, "render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleInteractive(w http.ResponseWriter, r *http.Request) {
	snap := s.Current()
	if snap == nil {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.InteractivePage(w, snap.Summary); err != nil {
		s.log.Error("render interactive charts", zap.Error(err))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.Current()
	if snap == nil {
		http.Error(w, "no dataset loaded", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportName(snap.Name)))
	if err := parser.WriteCSV(w, snap.Data); err != nil {
		s.log.Error("export csv", zap.Error(err))
	}
}

// ExportName derives the download name of a normalized export.
func ExportName(name string) string {
	base := filepath.Base(name)
	for parser.IsArchive(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	// header-safe ASCII for Content-Disposition
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < ' ' {
			return -1
		}
		return r
	}, unidecode.Unidecode(base))
	if base == "" || base == "." {
		base = "specimens"
	}
	return base + "-normalized.csv"
}

func (s *Server) statsOf(snap *Snapshot, withData bool) statsResponse {
	at := snap.LoadedAt
	resp := statsResponse{
		ID:       snap.ID,
		Name:     snap.Name,
		LoadedAt: &at,
		Overview: snap.Summary.Overview,
		Stats:    snap.Summary.Bundle,
	}
	if withData {
		resp.Data = snap.Data
	}
	return resp
}

// fail reports err as JSON to API clients and as a dashboard message otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Warn("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	if wantsJSON(r) {
		writeJSON(w, status, errorOf(err))
		return
	}
	s.renderPage(w, status, "", err.Error())
}

func errorOf(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	var mi *processor.MalformedInputError
	if errors.As(err, &mi) && mi.Index >= 0 {
		idx := mi.Index
		resp.Index = &idx
	}
	var mc *processor.MissingColumnsError
	if errors.As(err, &mc) {
		resp.Columns = mc.Columns
	}
	return resp
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
