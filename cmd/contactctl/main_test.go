package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSubmitCommandSuccess(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "submit", "--url", srv.URL,
		"--name", "Ada", "--email", "ada@example.com", "--comments", "Need an audit", "--token", "tok-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Message sent successfully!")
	assert.Equal(t, "tok-1", got["captchaToken"])
	assert.Equal(t, "Ada", got["name"])
}

func TestSubmitCommandInvalidSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	out, err := runCmd(t, "submit", "--url", srv.URL, "--email", "nope")
	require.ErrorIs(t, err, errSubmitFailed)
	assert.Contains(t, out, "captcha: Please complete the CAPTCHA")
	assert.Contains(t, out, "email: Please enter a valid email address")
	assert.Contains(t, out, "name: Name is required")
	assert.Zero(t, calls.Load())
}

func TestSubmitCommandGatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid CAPTCHA"}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "submit", "--url", srv.URL,
		"--name", "Ada", "--email", "ada@example.com", "--comments", "hi", "--token", "bad")
	require.ErrorIs(t, err, errSubmitFailed)
	assert.Contains(t, out, "Failed to send message. Please try again.")
	assert.Contains(t, out, "gateway status: 400")
	assert.Contains(t, out, "gateway error: Invalid CAPTCHA")
}

func TestSubmitCommandPrintsGatewayFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid submission","fields":{"name":"Name is required","comments":"Comments are required"}}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "submit", "--url", srv.URL,
		"--name", "Ada", "--email", "ada@example.com", "--comments", "hi", "--token", "tok")
	require.ErrorIs(t, err, errSubmitFailed)
	assert.Contains(t, out, "gateway error: Invalid submission")
	assert.Contains(t, out, "comments: Comments are required\nname: Name is required\n")
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("captcha:\n  provider: turnstile\n  secret_key: super-secret-value\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), raw, 0o600))

	out, err := runCmd(t, "config", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "turnstile")
	assert.Contains(t, out, "******")
	assert.NotContains(t, out, "super-secret-value")
}
