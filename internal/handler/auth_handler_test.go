package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestRegisterAndCurrentUser(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})
	s.register(t, "alice")

	w := s.do(http.MethodGet, "/api/user", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	payload := decodeJSON(t, w)
	data, _ := payload["data"].(map[string]any)
	if data["username"] != "alice" {
		t.Fatalf("unexpected current user: %v", payload)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})
	s.register(t, "alice")

	body := `{"username":"alice","email":"other@example.com","password":"secret"}`
	w := s.do(http.MethodPost, "/api/register", strings.NewReader(body), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})
	s.register(t, "alice")
	s.cookies = nil

	body := `{"username":"alice","password":"wrong"}`
	w := s.do(http.MethodPost, "/api/login", strings.NewReader(body), "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginThenAccessProtectedRoute(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})
	s.register(t, "alice")
	s.cookies = nil

	body := `{"username":"alice","password":"secret"}`
	w := s.do(http.MethodPost, "/api/login", strings.NewReader(body), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", w.Code, w.Body.String())
	}
	s.cookies = w.Result().Cookies()

	w = s.do(http.MethodGet, "/api/posts", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})

	w := s.do(http.MethodGet, "/api/posts", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t, &fakePublisher{}, &fakeDeleter{})
	s.register(t, "alice")

	w := s.do(http.MethodPost, "/api/logout", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout failed with %d: %s", w.Code, w.Body.String())
	}
	s.cookies = w.Result().Cookies()

	w = s.do(http.MethodGet, "/api/user", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d: %s", w.Code, w.Body.String())
	}
}
