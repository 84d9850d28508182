// Package webui serves the comparison page: a form for a country name and the
// predicted vs official table plus the official history, read from the loaded
// tables.
//
// Routes:
//
//	GET /             → form and comparison for ?country= (or ?countryName=; default country when empty)
//	GET /api/compare  → the same comparison as JSON
package webui

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"climate/internal/report"
	"climate/internal/sqlgen"
	"climate/internal/storage"
)

// Config controls server startup.
type Config struct {
	Addr string
	// DefaultCountry is shown when the request names none.
	DefaultCountry string
}

// Server wraps http.Server for convenience.
type Server struct {
	cfg    Config
	repo   storage.Repository
	tables sqlgen.Tables
	mux    *http.ServeMux
	tmpl   *template.Template
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config, repo storage.Repository, tables sqlgen.Tables) *Server {
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "Germany"
	}
	s := &Server{
		cfg:    cfg,
		repo:   repo,
		tables: tables,
		mux:    http.NewServeMux(),
		tmpl:   template.Must(template.New("index").Funcs(funcs).Parse(indexHTML)),
	}
	s.routes()
	return s
}

// Handler exposes the routes (tests use it with httptest).
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server and shuts it down when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/compare", s.handleAPICompare)
}

// country reads ?country=, or ?countryName= as older links spell it.
func (s *Server) country(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range []string{"country", "countryName"} {
		if c := strings.TrimSpace(q.Get(key)); c != "" {
			return c
		}
	}
	return s.cfg.DefaultCountry
}

// pageData is the template input. Err is shown instead of the tables.
type pageData struct {
	Country    string
	Comparison report.Comparison
	Err        string
}

// handleIndex renders the form and the comparison.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := pageData{Country: s.country(r)}
	cmp, err := report.Compare(r.Context(), s.repo, s.tables, data.Country)
	switch {
	case errors.Is(err, report.ErrCountryNotFound):
		w.WriteHeader(http.StatusNotFound)
		data.Err = "No country named " + data.Country + "."
	case err != nil:
		log.Printf("webui: compare country=%q: %v", data.Country, err)
		w.WriteHeader(http.StatusInternalServerError)
		data.Err = "The comparison could not be loaded."
	default:
		data.Comparison = cmp
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("webui: template error:", err)
	}
}

// compareJSON is the API shape; nulls mark missing official values.
type compareJSON struct {
	Code    string        `json:"code"`
	Name    string        `json:"name"`
	Years   []yearJSON    `json:"years"`
	History []historyJSON `json:"history"`
}

type yearJSON struct {
	Year      int      `json:"year"`
	Predicted float64  `json:"predicted"`
	Official  *float64 `json:"official"`
}

type historyJSON struct {
	Column string   `json:"column"`
	Year   int      `json:"year"`
	Value  *float64 `json:"value"`
}

// handleAPICompare returns the comparison as JSON.
func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	cmp, err := report.Compare(r.Context(), s.repo, s.tables, s.country(r))
	if errors.Is(err, report.ErrCountryNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("webui: api compare: %v", err)
		http.Error(w, "compare failed", http.StatusInternalServerError)
		return
	}

	out := compareJSON{Code: cmp.Code, Name: cmp.Name, Years: []yearJSON{}, History: []historyJSON{}}
	for _, y := range cmp.Years {
		out.Years = append(out.Years, yearJSON{Year: y.Year, Predicted: y.Predicted, Official: y.Official})
	}
	for _, h := range cmp.History {
		out.History = append(out.History, historyJSON{Column: h.Column, Year: h.Year, Value: h.Value})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("webui: encode: %v", err)
	}
}

var funcs = template.FuncMap{
	"temp": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fixed(*v)
	},
	"fixed": fixed,
}

func fixed(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// indexHTML is the embedded page.
//
//go:embed index.tmpl.html
var indexHTML string
