package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/safety"
)

// Handler serves the peer side of remote execution: a status page on GET /
// and command execution on POST /execute. It applies no safety gate; the
// peer trusts whoever can reach it.
type Handler struct {
	shell safety.Shell
	mux   *http.ServeMux
	name  string
}

// NewHandler creates a peer handler that runs commands with shell.
func NewHandler(shell safety.Shell, name string) *Handler {
	h := &Handler{shell: shell, mux: http.NewServeMux(), name: name}
	h.mux.HandleFunc("/execute", h.handleExecute)
	h.mux.HandleFunc("/", h.handleIndex)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ExecuteResponse{Error: "method not allowed"})
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ExecuteResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, ExecuteResponse{Error: "No command provided"})
		return
	}

	logger.Info("remote execute", "command", req.Command, "peer", r.RemoteAddr)
	output, code, err := h.shell.Run(r.Context(), req.Command)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ExecuteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Output: &output, ExitCode: &code})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Name string }{h.name}); err != nil {
		logger.Error("render index", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response", "error", err)
	}
}

// Serve runs the peer server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Name}} remote</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
body { background: #121212; color: #0f0; font-family: monospace; padding: 20px; }
#out { border: 1px solid #0f0; padding: 10px; height: 300px; overflow: auto; background: #000; white-space: pre-wrap; }
input { width: calc(100% - 22px); background: #000; border: 1px solid #0f0; color: #0f0; padding: 10px; margin-top: 10px; }
button { background: #0f0; color: #000; border: none; padding: 10px; width: 100%; margin-top: 10px; font-weight: bold; }
</style>
</head>
<body>
<h2>{{.Name}} remote</h2>
<div id="out">Server ready.</div>
<input type="text" id="cmd" placeholder="Enter command..." onkeypress="if(event.key === 'Enter') run()">
<button onclick="run()">EXECUTE</button>
<script>
async function run() {
  const input = document.getElementById('cmd');
  const out = document.getElementById('out');
  const cmd = input.value;
  if (!cmd) return;
  input.value = '';
  out.textContent += '\n❯ ' + cmd;
  try {
    const res = await fetch('/execute', {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify({command: cmd})});
    const data = await res.json();
    out.textContent += '\n' + (data.output || data.error || 'Done.');
  } catch (err) {
    out.textContent += '\nError: ' + err.message;
  }
  out.scrollTop = out.scrollHeight;
}
</script>
</body>
</html>
`))
