package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeaderAuthenticator(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if _, err := (HeaderAuthenticator{}).Authenticate(r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	r.Header.Set("X-User-Id", "u1")
	r.Header.Set("X-User-Email", "a@b.mu")
	id, err := (HeaderAuthenticator{}).Authenticate(r)
	if err != nil || id.ID != "u1" || id.Email != "a@b.mu" {
		t.Fatalf("unexpected identity %+v err=%v", id, err)
	}
}

func TestRemoteAuthenticator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" || r.Header.Get("apikey") != "anon" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u9","email":"u9@shop.mu","role":"authenticated"}`))
		case "Bearer broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()
	a := NewRemoteAuthenticator(srv.URL+"/", "anon")

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	if _, err := a.Authenticate(r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("missing token: %v", err)
	}

	r.Header.Set("Authorization", "Bearer good")
	id, err := a.Authenticate(r)
	if err != nil || id.ID != "u9" || id.Email != "u9@shop.mu" {
		t.Fatalf("unexpected identity %+v err=%v", id, err)
	}

	r.Header.Set("Authorization", "bearer expired")
	if _, err := a.Authenticate(r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token: %v", err)
	}

	r.Header.Set("Authorization", "Bearer broken")
	_, err = a.Authenticate(r)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
