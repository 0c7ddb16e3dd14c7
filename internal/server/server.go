// Package server exposes loaded pattern databases over HTTP.
//
// Routes:
//
//	GET /healthz                          liveness
//	GET /v1/tables                        loaded tables and their statistics
//	GET /v1/distance?table=T&moves=M      distance of the state reached by M in table T
//	GET /v1/heuristic?moves=M             maximum over every loaded table
//	GET /metrics                          prometheus metrics
//
// Move sequences use Singmaster notation ("R U R' U2") and are applied to the
// solved cube. Instead of moves, a state may be given directly with
// state=S in the slot:piece+twist form ("URF:UFL+1 UFL:URF+2 ...").
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/errors"
	"github.com/matzehuels/patterndb/pkg/observability"
	"github.com/matzehuels/patterndb/pkg/pdb"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// context is cancelled.
const shutdownTimeout = 10 * time.Second

// Server answers distance queries against a fixed set of tables.
// Tables are read-only once loaded, so handlers share them without locking.
type Server struct {
	tables    map[string]*pdb.Database[cube.State]
	order     []string
	heuristic pdb.Heuristic[cube.State]
	logger    *log.Logger
	gatherer  prometheus.Gatherer
}

// New creates a server over tables. gatherer backs /metrics; nil uses the
// default prometheus registry.
func New(tables []*pdb.Database[cube.State], logger *log.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		tables:   make(map[string]*pdb.Database[cube.State], len(tables)),
		logger:   logger,
		gatherer: gatherer,
	}
	parts := make([]pdb.Heuristic[cube.State], 0, len(tables))
	for _, db := range tables {
		s.tables[db.Name()] = db
		s.order = append(s.order, db.Name())
		parts = append(parts, db)
	}
	s.heuristic = pdb.Max(parts...)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/tables", s.handleTables)
		r.Get("/distance", s.handleDistance)
		r.Get("/heuristic", s.handleHeuristic)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "tables", s.order)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Handlers
// =============================================================================

type tableInfo struct {
	Name        string `json:"name"`
	Size        uint32 `json:"size"`
	State       string `json:"state"`
	Filled      int    `json:"filled"`
	MaxDistance uint8  `json:"max_distance"`
	Histogram   []int  `json:"histogram"`
}

type distanceResponse struct {
	Table    string `json:"table"`
	Moves    string `json:"moves,omitempty"`
	State    string `json:"state"`
	Index    uint32 `json:"index"`
	Distance uint8  `json:"distance"`
}

type heuristicResponse struct {
	Moves    string            `json:"moves,omitempty"`
	State    string            `json:"state"`
	Distance uint8             `json:"distance"`
	Parts    map[string]*uint8 `json:"parts"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	out := make([]tableInfo, 0, len(s.order))
	for _, name := range s.order {
		t := s.tables[name].Table()
		d, _ := t.MaxDistance()
		out = append(out, tableInfo{
			Name:        name,
			Size:        t.Size(),
			State:       t.State().String(),
			Filled:      t.Filled(),
			MaxDistance: d,
			Histogram:   t.Histogram(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("table")
	db, ok := s.tables[name]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeTableNotFound, "table %q is not loaded", name))
		return
	}
	state, moves, err := parseState(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	idx, err := db.IndexFor(state)
	var d uint8
	if err == nil {
		d, err = db.Distance(state)
	}
	observability.Query().OnQuery(r.Context(), name, time.Since(start), err)
	if err != nil {
		s.writeError(w, classify(err))
		return
	}
	writeJSON(w, http.StatusOK, distanceResponse{Table: name, Moves: moves, State: state.String(), Index: idx, Distance: d})
}

func (s *Server) handleHeuristic(w http.ResponseWriter, r *http.Request) {
	state, moves, err := parseState(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	d, err := s.heuristic.Distance(state)
	observability.Query().OnQuery(r.Context(), "max", time.Since(start), err)
	if err != nil {
		s.writeError(w, classify(err))
		return
	}

	resp := heuristicResponse{Moves: moves, State: state.String(), Distance: d, Parts: make(map[string]*uint8, len(s.order))}
	for _, name := range s.order {
		if pd, err := s.tables[name].Distance(state); err == nil {
			resp.Parts[name] = &pd
		} else {
			resp.Parts[name] = nil
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// parseState reads the queried state from either the state or the moves
// parameter.
func parseState(q url.Values) (cube.State, string, error) {
	if q.Has("state") {
		if q.Get("moves") != "" {
			return cube.State{}, "", errors.New(errors.ErrCodeInvalidInput, "give either state or moves, not both")
		}
		s, err := cube.ParseState(q.Get("state"))
		if err != nil {
			return cube.State{}, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse state")
		}
		return s, "", nil
	}

	text := q.Get("moves")
	if err := errors.ValidateMoveSequence(text); err != nil {
		return cube.State{}, "", err
	}
	moves, err := cube.ParseMoves(text)
	if err != nil {
		return cube.State{}, "", errors.Wrap(errors.ErrCodeInvalidMove, err, "parse moves %q", text)
	}
	return cube.Solved().ApplyAll(moves), cube.FormatMoves(moves), nil
}

// classify attaches a code to library errors.
func classify(err error) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, pdb.ErrUnpopulatedIndex):
		return errors.Wrap(errors.ErrCodeNoBound, err, "no bound known for this state")
	case stderrors.Is(err, pdb.ErrIncomplete):
		return errors.Wrap(errors.ErrCodeTableNotFound, err, "table is not ready")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "query failed")
	}
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidEncoding,
		errors.ErrCodeInvalidMove, errors.ErrCodeInvalidPermutation:
		return http.StatusBadRequest
	case errors.ErrCodeTableNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoBound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
