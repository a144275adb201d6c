//go:build integration

package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/adamwoolhether/reqmaker"
	"github.com/adamwoolhether/reqmaker/auth"
	"github.com/adamwoolhether/reqmaker/client"
	"github.com/adamwoolhether/reqmaker/config"
	"github.com/adamwoolhether/reqmaker/cookie"
	"github.com/adamwoolhether/reqmaker/errs"
	"github.com/adamwoolhether/reqmaker/header"
	"github.com/adamwoolhether/reqmaker/request"
	"github.com/adamwoolhether/reqmaker/transport"
)

// -------------------------------------------------------------------------
// Types
// -------------------------------------------------------------------------

type user struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type itemResp struct {
	ID   string `json:"id"`
	Lang string `json:"lang"`
}

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

type app struct {
	url       string
	meCalls   atomic.Int32
	logoutHit atomic.Int32
}

func newTestApp(t *testing.T) *app {
	t.Helper()

	a := &app{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", echoHandler)
	mux.HandleFunc("GET /items/{id}", itemHandler)
	mux.HandleFunc("POST /login", loginHandler)
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		a.meCalls.Add(1)
		meHandler(w, r)
	})
	mux.HandleFunc("GET /deprecated", deprecatedHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	a.url = srv.URL

	return a
}

func (a *app) config() *config.Config {
	return &config.Config{
		BaseURL:        a.url,
		DefaultQuery:   map[string]string{"lang": "en"},
		OnUnauthorized: func() { a.logoutHit.Add(1) },
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// -------------------------------------------------------------------------
// Handlers
// -------------------------------------------------------------------------

func echoHandler(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

func itemHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(itemResp{
		ID:   r.PathValue("id"),
		Lang: r.URL.Query().Get("lang"),
	})
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("user") != "alice" || r.PostForm.Get("pass") != "s3cret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "session", Value: "alice-session", Path: "/", MaxAge: 3600})
	w.WriteHeader(http.StatusNoContent)
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer token-1" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
		return
	}
	if c, err := r.Cookie("session"); err != nil || c.Value != "alice-session" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"name":"alice","email":"alice@test.com","age":30}`))
}

func deprecatedHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Warning", `299 api "endpoint is deprecated"`)
	_, _ = w.Write([]byte(`{}`))
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_JSONRoundTrip(t *testing.T) {
	a := newTestApp(t)

	for _, name := range []string{"http", "resty"} {
		t.Run(name, func(t *testing.T) {
			var tr transport.Transport = transport.NewResty(nil)
			if name == "http" {
				var err error
				tr, err = transport.NewHTTP(transport.WithThrottle(50, 5), transport.WithLogger(newLogger()))
				if err != nil {
					t.Fatal(err)
				}
			}

			m, err := reqmaker.New(client.WithTransport(tr), client.WithLogger(newLogger()))
			if err != nil {
				t.Fatal(err)
			}

			sent := user{Name: "Alice", Email: "alice@test.com", Age: 30}
			d := reqmaker.Describe(a.config(), http.MethodPost, request.Public("echo"), nil)
			d.Parameters = request.Parameters{"name": sent.Name, "email": sent.Email, "age": sent.Age}

			got, err := client.PerformAs(t.Context(), m, d, client.ExpectJSON[user]())
			if err != nil {
				t.Fatalf("executing request: %v", err)
			}
			if got != sent {
				t.Errorf("exp %+v; got %+v", sent, got)
			}
		})
	}
}

func TestE2E_PathAndDefaultQuery(t *testing.T) {
	a := newTestApp(t)

	m, err := reqmaker.New(client.WithLogger(newLogger()))
	if err != nil {
		t.Fatal(err)
	}

	d := reqmaker.Describe(a.config(), http.MethodGet, request.Public("/items/42"), nil)
	got, err := client.PerformAs(t.Context(), m, d, client.ExpectJSON[itemResp]())
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}
	if got != (itemResp{ID: "42", Lang: "en"}) {
		t.Errorf("exp id 42 with default lang; got %+v", got)
	}
}

func TestE2E_SessionPersistsAcrossMakers(t *testing.T) {
	a := newTestApp(t)
	dbPath := filepath.Join(t.TempDir(), "cookies.db")
	cfg := a.config()

	store, err := cookie.OpenBolt(dbPath, newLogger())
	if err != nil {
		t.Fatal(err)
	}
	m, err := reqmaker.New(client.WithCookieStore(store), client.WithLogger(newLogger()))
	if err != nil {
		t.Fatal(err)
	}

	login := reqmaker.Describe(cfg, http.MethodPost, request.Public("login"), nil)
	login.Parameters = request.Parameters{"user": "alice", "pass": "s3cret"}
	login.Header = header.New("Content-Type", header.Form.MIME())
	if _, err := client.PerformAs(t.Context(), m, login, client.ExpectVoid()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// A fresh store opened on the same file carries the session.
	store, err = cookie.OpenBolt(dbPath, newLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m, err = reqmaker.New(client.WithCookieStore(store), client.WithLogger(newLogger()))
	if err != nil {
		t.Fatal(err)
	}

	me := reqmaker.Describe(cfg, http.MethodGet, request.Private("me"), auth.Bearer("token-1"))
	got, err := client.PerformAs(t.Context(), m, me, client.ExpectJSON[user]())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if got.Name != "alice" {
		t.Errorf("exp alice; got %+v", got)
	}
}

func TestE2E_Unauthorized(t *testing.T) {
	a := newTestApp(t)
	m, err := reqmaker.New(client.WithLogger(newLogger()))
	if err != nil {
		t.Fatal(err)
	}

	// Missing credentials never reach the server.
	d := reqmaker.Describe(a.config(), http.MethodGet, request.Private("me"), nil)
	d.LogOutIfUnauthorized = true
	if _, err := m.Perform(t.Context(), d); !errs.IsUnauthorized(err) {
		t.Fatalf("exp unauthorized; got %v", err)
	}
	if n := a.meCalls.Load(); n != 0 {
		t.Fatalf("exp no server call; got %d", n)
	}
	if n := a.logoutHit.Load(); n != 0 {
		t.Fatalf("exp handler not called; got %d", n)
	}

	d = reqmaker.Describe(a.config(), http.MethodGet, request.Private("me"), auth.Bearer("wrong"))
	d.LogOutIfUnauthorized = true
	_, err = m.Perform(t.Context(), d)
	if !errs.IsUnauthorized(err) {
		t.Fatalf("exp unauthorized; got %v", err)
	}
	if string(errs.RawBody(err)) != `{"error":"bad token"}` {
		t.Errorf("exp body kept; got %q", errs.RawBody(err))
	}
	if n := a.logoutHit.Load(); n != 1 {
		t.Errorf("exp handler called once; got %d", n)
	}
}

func TestE2E_WarningAndNotFound(t *testing.T) {
	a := newTestApp(t)
	m, err := reqmaker.New(client.WithLogger(newLogger()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = m.Perform(t.Context(), reqmaker.Describe(a.config(), http.MethodGet, request.Public("deprecated"), nil))
	e, ok := errs.As(err)
	if !ok || !errors.Is(err, errs.ErrWarning) || e.Message != "endpoint is deprecated" {
		t.Fatalf("exp deprecation warning; got %v", err)
	}

	_, err = m.Perform(t.Context(), reqmaker.Describe(a.config(), http.MethodGet, request.Public("nowhere"), nil))
	if !errors.Is(err, errs.ErrTransport) || !errors.Is(err, transport.ErrUnexpectedStatusCode) {
		t.Fatalf("exp transport failure; got %v", err)
	}
	if e, _ := errs.As(err); e.StatusCode != http.StatusNotFound {
		t.Errorf("exp 404; got %d", e.StatusCode)
	}
}

func TestE2E_Tracing(t *testing.T) {
	a := newTestApp(t)

	rec := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	m, err := reqmaker.New(
		client.WithTracer(tp.Tracer("e2e")),
		client.WithRequestID("X-Request-ID"),
		client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Perform(t.Context(), reqmaker.Describe(a.config(), http.MethodGet, request.Public("items/1"), nil)); err != nil {
		t.Fatalf("executing request: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "reqmaker.perform" {
		t.Fatalf("exp one reqmaker.perform span; got %d", len(spans))
	}

	attrs := map[string]bool{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = true
	}
	for _, k := range []string{"http.request.method", "url.full", "request.id", "http.response.status_code"} {
		if !attrs[k] {
			t.Errorf("exp span attribute %s", k)
		}
	}
}
