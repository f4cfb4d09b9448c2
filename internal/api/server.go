// Package api exposes the query engine over HTTP. Queries arrive as
// serialized definitions (query.Def) and results leave as JSON rows
// plus any diagnostics the execution raised. The surface is read-only:
// there is no insert/update/delete.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/quarry/internal/engine"
	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/record"
	"github.com/roach88/quarry/internal/sqlexport"
	"github.com/roach88/quarry/internal/store"
)

// TableLister is the optional store capability behind GET /tables.
type TableLister interface {
	Tables() []string
}

// Server handles query execution requests against one store.
type Server struct {
	provider store.Provider
	logger   *slog.Logger
}

// NewServer creates a server over the given provider.
func NewServer(p store.Provider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{provider: p, logger: logger}
}

// Handler builds the chi route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Post("/query", s.handleQuery)
	r.Post("/export", s.handleExport)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/tables", s.handleTables)
	r.Get("/tables/{name}", s.handleTable)

	return r
}

type queryRequest struct {
	Query query.Def `json:"query"`
}

type queryResponse struct {
	Data     []record.Record `json:"data"`
	Count    int             `json:"count"`
	Warnings []warning       `json:"warnings,omitempty"`
}

type warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// A per-request engine with a collecting sink, so each response
	// carries exactly its own diagnostics.
	collector := &engine.Collector{}
	eng := engine.New(s.provider, engine.WithSink(collector))
	rows := eng.ExecutePlan(r.Context(), req.Query.Plan())

	resp := queryResponse{Data: rows, Count: len(rows)}
	if rows == nil {
		resp.Data = []record.Record{}
	}
	for _, d := range collector.Diagnostics() {
		resp.Warnings = append(resp.Warnings, warning{Stage: d.Stage, Message: d.Message})
	}
	writeJSON(w, http.StatusOK, resp)
}

type exportRequest struct {
	Query   query.Def `json:"query"`
	Dialect string    `json:"dialect"`
}

type exportResponse struct {
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	d := sqlexport.Dialect(req.Dialect)
	if req.Dialect == "" {
		d = sqlexport.Standard
	}
	if !d.Valid() {
		writeError(w, http.StatusBadRequest, "unknown dialect "+req.Dialect)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Dialect: string(d),
		SQL:     sqlexport.Export(req.Query.Plan(), d),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, query.Analyze(req.Query.Plan()))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.provider.(TableLister)
	if !ok {
		writeError(w, http.StatusNotImplemented, "store does not enumerate tables")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": lister.Tables()})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rows, err := s.provider.GetTable(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []record.Record{}
	}
	writeJSON(w, http.StatusOK, queryResponse{Data: rows, Count: len(rows)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
