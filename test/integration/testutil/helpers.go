//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/google/uuid"
)

// Do sends a JSON request. A nil body sends none; an empty token sends no Authorization.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET sends an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// LoginResult is the decoded body of a successful login.
type LoginResult struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
}

// Login authenticates through the API and fails the test on anything but 200.
func (env *TestEnv) Login(username, password string) LoginResult {
	env.t.Helper()
	resp := env.Do(http.MethodPost, "/api/admin/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("Login %s: status %d", username, resp.StatusCode)
	}
	var out LoginResult
	DecodeJSON(env.t, resp, &out)
	return out
}

// BootstrapLogin seeds the bootstrap admin and logs in as it.
func (env *TestEnv) BootstrapLogin() LoginResult {
	env.t.Helper()
	if _, err := env.Access.EnsureBootstrapAdmin(env.t.Context()); err != nil {
		env.t.Fatalf("EnsureBootstrapAdmin: %v", err)
	}
	return env.Login(domain.BootstrapUsername, domain.BootstrapPassword)
}

// CreateEvent posts an event as the given admin and returns its id.
func (env *TestEnv) CreateEvent(token, title, occursAt, location, details string) uuid.UUID {
	env.t.Helper()
	resp := env.Do(http.MethodPost, "/api/events", map[string]string{
		"title":     title,
		"occurs_at": occursAt,
		"location":  location,
		"details":   details,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		env.t.Fatalf("CreateEvent %q: status %d", title, resp.StatusCode)
	}
	var out struct {
		ID uuid.UUID `json:"id"`
	}
	DecodeJSON(env.t, resp, &out)
	return out.ID
}

// ListEvents fetches one partition ("upcoming" or "past").
func (env *TestEnv) ListEvents(partition string) []domain.Event {
	env.t.Helper()
	resp := env.GET("/api/events/" + partition)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("ListEvents %s: status %d", partition, resp.StatusCode)
	}
	var out []domain.Event
	DecodeJSON(env.t, resp, &out)
	return out
}
