package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"contactbook/internal/model"
	"contactbook/internal/storage"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *storage.Memory) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	st := storage.NewMemory()
	return New(Options{BaseURL: srv.URL + "/", Storage: st, Logger: zerolog.Nop()}), st
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode(model.ContactsResponse{Success: true, Data: []model.Contact{}})
	})
	if err := st.Set(context.Background(), storage.TokenKey, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := c.ListContacts(context.Background()); err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatalf("expected request id header")
	}
}

func TestClient_NoTokenSendsUnauthenticated(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.AuthResponse{Success: true})
	})

	if _, err := c.Login(context.Background(), model.LoginRequest{Email: "a@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestClient_UnauthorizedClearsTokenAndRunsHooks(t *testing.T) {
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
	})
	ctx := context.Background()
	_ = st.Set(ctx, storage.TokenKey, "stale")

	var calls atomic.Int32
	c.OnUnauthorized(func() { calls.Add(1) })

	_, err := c.ListContacts(ctx)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if err.Error() != "Token expired" {
		t.Fatalf("expected server message, got %q", err.Error())
	}
	if _, ok, _ := st.Get(ctx, storage.TokenKey); ok {
		t.Fatalf("expected token removed")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected hook to run once, got %d", calls.Load())
	}
}

func TestClient_UnauthorizedWithoutTokenRunsHooks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"No token provided"}`))
	})

	var calls atomic.Int32
	c.OnUnauthorized(func() { calls.Add(1) })

	_, err := c.ListContacts(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected hook to run once, got %d", calls.Load())
	}
}

func TestClient_ErrorMessageFallbacks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contacts/a":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Contact not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	_, err := c.GetContact(context.Background(), "a")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "Contact not found" {
		t.Fatalf("unexpected error %#v", err)
	}

	err = c.DeleteContact(context.Background(), "b")
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected error %#v", err)
	}
	if !strings.Contains(apiErr.Message, "500") {
		t.Fatalf("expected status text fallback, got %q", apiErr.Message)
	}
}

func TestClient_ForbiddenKeepsToken(t *testing.T) {
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	ctx := context.Background()
	_ = st.Set(ctx, storage.TokenKey, "tok")

	if _, err := c.ListContacts(ctx); err == nil {
		t.Fatalf("expected error")
	}
	if v, ok, _ := st.Get(ctx, storage.TokenKey); !ok || v != "tok" {
		t.Fatalf("expected token kept on 403")
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := New(Options{BaseURL: srv.URL, Logger: zerolog.Nop()})

	_, err := c.ListContacts(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("expected non-API error, got %v", apiErr)
	}
}

func TestClient_ContactRequests(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"_id":"1","name":"John Updated","phone":"1","email":"j@example.com","__v":1}}`))
	})

	name := "John Updated"
	got, err := c.UpdateContact(context.Background(), "1", model.UpdateContactRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateContact: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/contacts/1" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotBody != `{"name":"John Updated"}` {
		t.Fatalf("expected partial body, got %s", gotBody)
	}
	if got.ID != "1" || got.Name != "John Updated" || got.Revision != 1 {
		t.Fatalf("unexpected contact %+v", got)
	}
}

func TestClient_MetricsUseRoutePattern(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.DeleteContact(context.Background(), "abc123"); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}

	var buf bytes.Buffer
	c.WriteMetrics(&buf)
	out := buf.String()
	if !strings.Contains(out, `contactbook_api_requests_total{method="DELETE",path="/contacts/:id",status="204"} 1`) {
		t.Fatalf("expected request counter, got:\n%s", out)
	}
	if strings.Contains(out, "abc123") {
		t.Fatalf("metrics must not carry raw ids:\n%s", out)
	}
}

func TestClient_LogoutRemovesToken(t *testing.T) {
	c, st := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("logout must not reach the network")
	})
	ctx := context.Background()
	_ = st.Set(ctx, storage.TokenKey, "tok")
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok, _ := st.Get(ctx, storage.TokenKey); ok {
		t.Fatalf("expected token removed")
	}
}
