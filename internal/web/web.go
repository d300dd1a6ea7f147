// Package web exposes the schedule over a small JSON API. Reads rebuild
// the table from the remote blob on every request; nothing persists
// between calls.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"schedcal/internal/config"
	icsexport "schedcal/internal/ics"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/nlp"
	"schedcal/internal/recur"
	"schedcal/internal/sched"
	"schedcal/internal/store"
	"schedcal/internal/view"
)

// Server provides HTTP APIs for viewing and mutating the schedule.
type Server struct {
	cfg *config.Config
	svc *sched.Service
	mux *http.ServeMux
}

// NewServer constructs a new Server around a sync service.
func NewServer(cfg *config.Config, svc *sched.Service) *Server {
	s := &Server{
		cfg: cfg,
		svc: svc,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve starts the HTTP server on cfg.Listen and blocks. ctx cancellation
// triggers a graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Treat empty username or password as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays unauthenticated for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/calendar", s.handleCalendar)
	s.mux.HandleFunc("/api/ics", s.handleICS)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/parse", s.handleParse)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// rowDTO is a JSON-friendly view of a schedule row.
type rowDTO struct {
	ID       int    `json:"id"`
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Name     string `json:"name"`
	Activity string `json:"activity"`
	Time     string `json:"time"`
	Label    string `json:"label"`
}

func toDTOs(t model.Table) []rowDTO {
	out := make([]rowDTO, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, rowDTO{
			ID:       r.ID,
			Date:     r.DateString(),
			Weekday:  r.Weekday,
			Name:     r.Name,
			Activity: r.Activity,
			Time:     r.Time,
			Label:    r.Label(),
		})
	}
	return out
}

// scheduleResponse is the JSON shape for GET /api/schedule.
type scheduleResponse struct {
	Rows     []rowDTO `json:"rows"`
	ReadOnly bool     `json:"read_only"`
}

// handleSchedule returns the schedule filtered and sorted for display.
//
// GET /api/schedule?weekday=Monday
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	table, err := s.svc.Load(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	table = view.FilterWeekday(table, r.URL.Query().Get("weekday"))
	table = view.SortForDisplay(table)

	writeJSON(w, http.StatusOK, scheduleResponse{
		Rows:     toDTOs(table),
		ReadOnly: !s.cfg.GitHub.TokenPresent(),
	})
}

// handleCalendar returns the pivoted weekday-by-time grid.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	table, err := s.svc.Load(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view.Pivot(table))
}

// handleICS serves the schedule as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}

	table, err := s.svc.Load(r.Context())
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(icsexport.Export(table)))
}

// addRequest is the JSON body for POST /api/events.
type addRequest struct {
	Name       string `json:"name"`
	Activity   string `json:"activity"`
	Time       string `json:"time"`
	Date       string `json:"date"`       // ISO date; empty means today
	Recurrence string `json:"recurrence"` // None, Daily, Weekly
	Count      int    `json:"count"`      // default 1
}

// mutationResponse reports a completed add or delete.
type mutationResponse struct {
	OpID    string   `json:"op_id"`
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Status  int      `json:"status"`
	Rows    []rowDTO `json:"rows"`
}

// handleEvents adds (POST) or deletes (DELETE) schedule rows.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAdd(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "POST or DELETE only")
	}
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	mode, err := recur.ParseMode(req.Recurrence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	start := time.Now().In(s.cfg.Location())
	if req.Date != "" {
		d := model.ParseDate(req.Date)
		if d == nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		start = *d
	}

	recs, err := recur.Expand(start, req.Name, req.Activity, req.Time, mode, req.Count)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.svc.AddRecords(r.Context(), recs, "Add event(s) via API")
	if err != nil {
		s.writeMutationError(w, err, result)
		return
	}
	s.writeMutation(w, result)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var result sched.Result
	var err error
	switch {
	case q.Get("id") != "":
		id, convErr := strconv.Atoi(q.Get("id"))
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}
		result, err = s.svc.DeleteByID(r.Context(), id)
	case q.Get("label") != "":
		result, err = s.svc.DeleteByLabel(r.Context(), q.Get("label"))
	default:
		writeError(w, http.StatusBadRequest, "id or label query parameter required")
		return
	}

	if err != nil {
		s.writeMutationError(w, err, result)
		return
	}
	s.writeMutation(w, result)
}

// parseRequest is the JSON body for POST /api/parse.
type parseRequest struct {
	Text string `json:"text"`
}

// handleParse adds an event from a natural-language phrase.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.svc.AddText(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, nlp.ErrNoMatch) || errors.Is(err, nlp.ErrUnresolvedDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error()+` (try: "Add gym on Wednesday for Vinoth")`)
			return
		}
		s.writeMutationError(w, err, result)
		return
	}
	s.writeMutation(w, result)
}

func (s *Server) writeMutation(w http.ResponseWriter, result sched.Result) {
	writeJSON(w, http.StatusOK, mutationResponse{
		OpID:    result.OpID,
		Added:   result.Added,
		Removed: result.Removed,
		Status:  result.Write.StatusCode,
		Rows:    toDTOs(result.Table),
	})
}

// writeMutationError maps workflow errors onto HTTP statuses. Remote
// rejections pass the store's status and body through verbatim.
func (s *Server) writeMutationError(w http.ResponseWriter, err error, result sched.Result) {
	var remote *store.RemoteError
	switch {
	case errors.Is(err, sched.ErrReadOnly), errors.Is(err, store.ErrMissingToken):
		writeError(w, http.StatusForbidden, "no credential configured; set "+config.TokenEnv)
	case errors.Is(err, sched.ErrNoSuchEvent):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &remote):
		appLog.Error("remote store rejected mutation", err, "status", remote.StatusCode)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":         "remote store rejected the write",
			"remote_status": remote.StatusCode,
			"remote_body":   remote.Body,
		})
	default:
		appLog.Error("mutation failed", err, "op", result.OpID)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var remote *store.RemoteError
	if errors.As(err, &remote) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":         "remote store unavailable",
			"remote_status": remote.StatusCode,
			"remote_body":   remote.Body,
		})
		return
	}
	appLog.Error("schedule load failed", err)
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
