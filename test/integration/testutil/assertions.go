//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body carries the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (error: %s)", expectedCode, errResp.Code, errResp.Error)
	}
}

// CountRows runs a COUNT(*) query and returns the result.
func CountRows(t *testing.T, env *TestEnv, query string, args ...interface{}) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	return count
}

// CountOutbox returns the number of change-feed rows for an aggregate.
func CountOutbox(t *testing.T, env *TestEnv, aggregateID, changeType string) int {
	t.Helper()
	return CountRows(t, env,
		"SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1 AND change_type = $2",
		aggregateID, changeType)
}
