package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(args ...string) (string, error) {
	cmd := newRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectError    bool
	}{
		{name: "help flag", args: []string{"--help"}, expectedOutput: "maintenance tasks"},
		{name: "lists subcommands", args: []string{"--help"}, expectedOutput: "migrate"},
		{name: "admin help", args: []string{"admin", "--help"}, expectedOutput: "Create an admin account"},
		{name: "invalid flag", args: []string{"--invalid-flag"}, expectedOutput: "unknown flag: --invalid-flag", expectError: true},
		{name: "admin add needs flags", args: []string{"admin", "add"}, expectedOutput: "required flag", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(tt.args...)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, output+err.Error(), tt.expectedOutput)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestHealthcheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"healthy"}`))
		}))
		defer srv.Close()

		out, err := execute("healthcheck", "--url", srv.URL+"/health")
		require.NoError(t, err)
		assert.Contains(t, out, "healthy")
	})

	t.Run("unhealthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
		}))
		defer srv.Close()

		_, err := execute("healthcheck", "--url", srv.URL+"/health")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := execute("healthcheck", "--url", "http://127.0.0.1:1/health", "--timeout", "500ms")
		assert.Error(t, err)
	})
}
