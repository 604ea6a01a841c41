package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"contactbook/internal/config"
	"contactbook/internal/storage"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.Config{Storage: storage.Options{Driver: "tape"}}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestNew_FileDriver(t *testing.T) {
	cfg := config.Config{Storage: storage.Options{Driver: "file", File: filepath.Join(t.TempDir(), "s.json")}}
	a, err := New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.Session.IsAuthenticated() {
		t.Fatalf("fresh app must start anonymous")
	}
}

func TestUnauthorizedExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"message": "ok",
				"data": map[string]any{
					"token": "tok",
					"user":  map[string]any{"id": "u1", "name": "Test User", "email": "test@example.com"},
				},
			})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
		}
	}))
	defer srv.Close()

	st := storage.NewMemory()
	a := NewWithStorage(config.Config{APIBaseURL: srv.URL + "/api"}, st, zerolog.Nop())
	ctx := context.Background()

	a.Session.Login(ctx, "test@example.com", "password123")
	if !a.Session.IsAuthenticated() {
		t.Fatalf("expected login to succeed, state %+v", a.Session.State())
	}

	a.Contacts.Fetch(ctx)

	if a.Session.IsAuthenticated() {
		t.Fatalf("expected session to expire after 401")
	}
	if _, ok, _ := st.Get(ctx, storage.TokenKey); ok {
		t.Fatalf("expected bearer token removed")
	}
	if _, ok, _ := st.Get(ctx, storage.SessionKey); ok {
		t.Fatalf("expected snapshot removed")
	}
	if got := a.Contacts.State(); len(got.Contacts) != 0 || got.Error != "Token expired" {
		t.Fatalf("unexpected contacts state %+v", got)
	}
}

func TestUnauthorizedWithoutStoredTokenExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"No token provided"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	st := storage.NewMemory()
	ctx := context.Background()
	_ = st.Set(ctx, storage.SessionKey, `{"state":{"user":{"id":"u1","name":"Test User","email":"test@example.com"},"token":"tok","isAuthenticated":true},"version":0}`)
	_ = st.Set(ctx, storage.TokenKey, "tok")
	a := NewWithStorage(config.Config{APIBaseURL: srv.URL + "/api"}, st, zerolog.Nop())
	if !a.Session.IsAuthenticated() {
		t.Fatalf("expected hydrated session")
	}

	// Token lost from storage while the in-memory identity survives.
	_ = st.Remove(ctx, storage.TokenKey)
	a.Contacts.Fetch(ctx)

	if a.Session.IsAuthenticated() {
		t.Fatalf("expected session to end after an unauthenticated 401")
	}
	if _, ok, _ := st.Get(ctx, storage.SessionKey); ok {
		t.Fatalf("expected snapshot removed")
	}
}

func TestFailedLoginLeavesAnonymousSessionAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	a := NewWithStorage(config.Config{APIBaseURL: srv.URL + "/api"}, storage.NewMemory(), zerolog.Nop())
	a.Session.Login(context.Background(), "test@example.com", "wrong123")

	state := a.Session.State()
	if state.IsAuthenticated || state.Error != "Invalid credentials" {
		t.Fatalf("unexpected state %+v", state)
	}
}
