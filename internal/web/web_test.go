package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"schedcal/internal/config"
	"schedcal/internal/model"
	"schedcal/internal/nlp"
	"schedcal/internal/sched"
	"schedcal/internal/store"
)

type fakeStore struct {
	remote   model.Table
	readOnly bool
	written  *model.Table
}

func (f *fakeStore) Fetch(context.Context) (model.Table, string, error) {
	cp := model.Table{Rows: append([]model.Record(nil), f.remote.Rows...)}
	return cp, "sha", nil
}

func (f *fakeStore) Write(_ context.Context, t model.Table, _ string) (store.WriteResult, error) {
	f.written = &t
	return store.WriteResult{OK: true, StatusCode: 200}, nil
}

func (f *fakeStore) CanWrite() bool { return !f.readOnly }

func testServer(fs *fakeStore, auth *config.BasicAuthConfig) *Server {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = auth
	if !fs.readOnly {
		cfg.GitHub.Token = "tok"
	}
	svc := sched.New(fs, nlp.NewParser(time.UTC))
	return NewServer(cfg, svc)
}

func seededStore() *fakeStore {
	d := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	var tbl model.Table
	tbl.Append(
		model.NewRecord(&d, "Vinoth", "gym", "7pm"),
	)
	return &fakeStore{remote: tbl}
}

func TestHandleSchedule(t *testing.T) {
	srv := testServer(seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp scheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].Activity != "gym" {
		t.Errorf("rows = %+v", resp.Rows)
	}
	if resp.Rows[0].Label == "" {
		t.Error("label missing")
	}
	if resp.ReadOnly {
		t.Error("read_only = true with a token configured")
	}
}

func TestHandleSchedule_WeekdayFilter(t *testing.T) {
	srv := testServer(seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule?weekday=Sunday", nil))

	var resp scheduleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 0 {
		t.Errorf("rows = %+v, want none on Sunday", resp.Rows)
	}
}

func TestHandleParse_AddsEvent(t *testing.T) {
	fs := seededStore()
	srv := testServer(fs, nil)

	body := strings.NewReader(`{"text":"add dentist on 2025-03-10 for Vinoth at 3pm"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/parse", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if fs.written == nil || len(fs.written.Rows) != 2 {
		t.Fatalf("written = %+v", fs.written)
	}
	if fs.written.Rows[1].Activity != "dentist" {
		t.Errorf("appended row = %+v", fs.written.Rows[1])
	}
}

func TestHandleParse_BadGrammar(t *testing.T) {
	srv := testServer(seededStore(), nil)

	body := strings.NewReader(`{"text":"walk the dog"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/parse", body))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Add gym on Wednesday for Vinoth") {
		t.Errorf("hint missing from body: %s", rec.Body)
	}
}

func TestHandleAdd_Recurring(t *testing.T) {
	fs := seededStore()
	srv := testServer(fs, nil)

	body := strings.NewReader(`{"name":"Anu","activity":"yoga","time":"6am","date":"2025-03-03","recurrence":"Daily","count":3}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if fs.written == nil || len(fs.written.Rows) != 4 {
		t.Fatalf("written rows = %+v", fs.written)
	}
	if fs.written.Rows[3].DateString() != "2025-03-05" {
		t.Errorf("last expanded date = %s, want 2025-03-05", fs.written.Rows[3].DateString())
	}
}

func TestHandleDelete_ByLabel(t *testing.T) {
	fs := seededStore()
	srv := testServer(fs, nil)

	label := fs.remote.Rows[0].Label()
	req := httptest.NewRequest(http.MethodDelete, "/api/events?label="+url.QueryEscape(label), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if fs.written == nil || len(fs.written.Rows) != 0 {
		t.Errorf("written = %+v", fs.written)
	}
}

func TestHandleDelete_MissingSelector(t *testing.T) {
	srv := testServer(seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/events", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMutation_ReadOnlyIsForbidden(t *testing.T) {
	fs := seededStore()
	fs.readOnly = true
	srv := testServer(fs, nil)

	body := strings.NewReader(`{"name":"Anu","activity":"yoga"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/events", body))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403; body %s", rec.Code, rec.Body)
	}
	if fs.written != nil {
		t.Error("write attempted in read-only mode")
	}
}

func TestBasicAuth(t *testing.T) {
	auth := &config.BasicAuthConfig{Username: "u", Password: "p"}
	srv := testServer(seededStore(), auth)
	h := srv.Handler()

	// /health is always open.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rec.Code)
	}

	// API without credentials is rejected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	// Correct credentials pass.
	req := httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}
}

func TestHandleICS(t *testing.T) {
	srv := testServer(seededStore(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "BEGIN:VEVENT") {
		t.Errorf("no VEVENT in feed:\n%s", rec.Body)
	}
}
