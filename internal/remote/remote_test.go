package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubShell struct {
	output string
	code   int
	err    error
	got    string
}

func (s *stubShell) Run(_ context.Context, command string) (string, int, error) {
	s.got = command
	return s.output, s.code, s.err
}

func TestClient_Run(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantPre bool
	}{
		{name: "output", status: 200, body: `{"output":"hello\n"}`, want: "hello\n"},
		{name: "absent output", status: 200, body: `{}`, want: NoOutput},
		{name: "empty output", status: 200, body: `{"output":""}`, want: NoOutput},
		{name: "silent failure", status: 200, body: `{"output":"","returncode":2}`, want: "Error: Command exited with code 2"},
		{name: "error field", status: 200, body: `{"error":"boom"}`, want: "Error: remote: boom"},
		{name: "server error", status: 500, body: `{"error":"x"}`, want: "Error: Server responded with status 500"},
		{name: "bad json", status: 200, body: `nope`, want: "Error: decode response", wantPre: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCommand string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/execute", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				var req ExecuteRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				gotCommand = req.Command
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got := NewClient(0).Run(context.Background(), srv.URL+"/", "uname -a")
			if tt.wantPre {
				assert.True(t, strings.HasPrefix(got, tt.want), got)
			} else {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, "uname -a", gotCommand)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := NewClient(time.Second).Run(context.Background(), url, "ls")
	assert.True(t, strings.HasPrefix(got, "Error: connecting to remote server"), got)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	got := NewClient(50*time.Millisecond).Run(context.Background(), srv.URL, "ls")
	assert.True(t, strings.HasPrefix(got, "Error:"), got)
}

func TestHandler_Execute(t *testing.T) {
	shell := &stubShell{output: "Linux\n"}
	srv := httptest.NewServer(NewHandler(shell, "nexus"))
	defer srv.Close()

	got := NewClient(0).Run(context.Background(), srv.URL, "uname")
	assert.Equal(t, "Linux\n", got)
	assert.Equal(t, "uname", shell.got)
}

func TestHandler_MissingCommand(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubShell{}, "nexus"))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", strings.NewReader(`{"command":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ExecuteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "No command provided", body.Error)
}

func TestHandler_ShellError(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubShell{err: assert.AnError}, "nexus"))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", strings.NewReader(`{"command":"ls"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandler_IndexAndMethods(t *testing.T) {
	srv := httptest.NewServer(NewHandler(&stubShell{}, "nexus"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, err = http.Get(srv.URL + "/execute")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
