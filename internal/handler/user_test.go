package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/kmatsui/go-todo-service/internal/model"
)

func registration() map[string]string {
	return map[string]string{
		"username":   "alice",
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "correct horse",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", registration())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d; want 200", resp.StatusCode)
	}
	view := decodeBody[map[string]any](t, resp)
	if view["username"] != "alice" || view["id"] == "" {
		t.Errorf("register view = %v", view)
	}
	if _, leaked := view["password"]; leaked {
		t.Error("register response must not contain a password field")
	}
	if _, leaked := view["hashed_password"]; leaked {
		t.Error("register response must not contain the hashed password")
	}
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", registration())
	resp.Body.Close()

	second := registration()
	second["email"] = "other@example.com"
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", second)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d; want 400", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["error"] != "The username is already taken." {
		t.Errorf("duplicate message = %q", body["error"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", registration())
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "correct horse",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d; want 200", resp.StatusCode)
	}
	token := decodeBody[model.Token](t, resp)
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Errorf("token = %+v", token)
	}

	// Wrong password and unknown user produce identical responses.
	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrongpass"},
		{"username": "nosuchuser", "password": "anything"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", creds)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("login %v status = %d; want 401", creds, resp.StatusCode)
		}
		body := decodeBody[map[string]string](t, resp)
		if body["error"] != "Invalid username or password" {
			t.Errorf("login %v error = %q", creds, body["error"])
		}
	}
}

func TestLoginFormEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", registration())
	resp.Body.Close()

	form := url.Values{"username": {"alice"}, "password": {"correct horse"}}
	resp, err := http.Post(srv.URL+"/api/v1/auth/login/form",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("form login: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("form login status = %d; want 200", resp.StatusCode)
	}
	token := decodeBody[model.Token](t, resp)
	if token.AccessToken == "" {
		t.Error("form login returned no token")
	}
}

func TestMeEndpointRequiresBearerToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", registration())
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", map[string]string{
		"username": "alice", "password": "correct horse",
	})
	token := decodeBody[model.Token](t, resp)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d; want 200", authed.StatusCode)
	}
	body := decodeBody[map[string]string](t, authed)
	if body["username"] != "alice" {
		t.Errorf("me = %v", body)
	}

	// Missing and tampered tokens are both rejected.
	unauthed, err := http.Get(srv.URL + "/api/v1/auth/me")
	if err != nil {
		t.Fatalf("me without token: %v", err)
	}
	unauthed.Body.Close()
	if unauthed.StatusCode != http.StatusUnauthorized {
		t.Errorf("me without token status = %d; want 401", unauthed.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken+"x")
	tampered, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me with tampered token: %v", err)
	}
	tampered.Body.Close()
	if tampered.StatusCode != http.StatusUnauthorized {
		t.Errorf("me with tampered token status = %d; want 401", tampered.StatusCode)
	}
}
