// Package projectserver is the HTTP side of the server process: it serves
// projects to the editor and forwards export requests to the GUI.
package projectserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fontra-pak/internal/backend"
	"fontra-pak/internal/editorurl"
	"fontra-pak/internal/logger"
)

const (
	VersionHeader   = "X-Fontra-Version"
	shutdownTimeout = 5 * time.Second
)

// ExportRequester is implemented by bridge.Bridge.
type ExportRequester interface {
	RequestExportAs(projectPath string, options map[string]interface{}) error
}

type Server struct {
	port     int
	token    string
	projects *ProjectManager
	exporter ExportRequester
	logger   logger.Logger
}

func New(port int, token string, exporter ExportRequester, log logger.Logger) *Server {
	return &Server{
		port:     port,
		token:    token,
		projects: NewProjectManager(),
		exporter: exporter,
		logger:   log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET "+editorurl.Prefix+"{path...}", s.handleEditor)
	mux.HandleFunc("GET /api/project/-/{path...}", s.handleProject)
	mux.HandleFunc("POST /api/export", s.handleExport)
	return s.withVersion(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("ProjectServer", "listening", map[string]interface{}{
		"addr": ln.Addr().String(),
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("ProjectServer", "stopped", nil)
	return nil
}

func (s *Server) withVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			w.Header().Set(VersionHeader, s.token)
		}
		s.logger.Debug("ProjectServer", "request", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Drop a font project on the Fontra Pak window to open it.")
}

func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	info, status, err := s.resolve(r.URL.EscapedPath(), editorurl.Prefix)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := editorPage.Execute(w, editorView{
		Info:       info,
		SampleText: r.URL.Query().Get("text"),
		Formats:    backend.ExportFormats,
	}); err != nil {
		s.logger.Error("ProjectServer", err, map[string]interface{}{"path": info.Path})
	}
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	info, status, err := s.resolve(r.URL.EscapedPath(), "/api/project/-/")
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type exportBody struct {
	Path    string                 `json:"path"`
	Format  string                 `json:"format"`
	Options map[string]interface{} `json:"options,omitempty"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body exportBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		http.Error(w, "invalid export request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Path == "" {
		http.Error(w, "missing project path", http.StatusBadRequest)
		return
	}
	if _, err := backend.ParseFormat(body.Format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	options := make(map[string]interface{}, len(body.Options)+1)
	for k, v := range body.Options {
		options[k] = v
	}
	options["format"] = body.Format

	if err := s.exporter.RequestExportAs(body.Path, options); err != nil {
		s.logger.Error("ProjectServer", err, map[string]interface{}{"path": body.Path})
		http.Error(w, "export request failed", http.StatusServiceUnavailable)
		return
	}
	// The GUI answers with its own dialogs; nothing comes back here.
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "requested"})
}

func (s *Server) resolve(escapedPath, prefix string) (*backend.Info, int, error) {
	rest, ok := strings.CutPrefix(escapedPath, prefix)
	if !ok {
		return nil, http.StatusBadRequest, fmt.Errorf("unexpected path %q", escapedPath)
	}
	path, err := editorurl.ProjectPath(editorurl.Prefix + rest)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	info, err := s.projects.Open(path)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return nil, http.StatusNotFound, err
	case errors.Is(err, backend.ErrUnsupportedFormat):
		return nil, http.StatusUnsupportedMediaType, err
	case err != nil:
		return nil, http.StatusInternalServerError, err
	}
	return info, http.StatusOK, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type editorView struct {
	Info       *backend.Info
	SampleText string
	Formats    []backend.Format
}

var editorPage = template.Must(template.New("editor").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Info.Path}}</title></head>
<body>
<h1>{{.Info.Path}}</h1>
<p>Format: {{.Info.Format}}</p>
{{with .Info.Sources}}<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p id="sample">{{.SampleText}}</p>
<form id="export">
<select name="format">{{range .Formats}}<option>{{.}}</option>{{end}}</select>
<button type="submit">Export As…</button>
</form>
<script>
document.getElementById("export").addEventListener("submit", (e) => {
  e.preventDefault();
  fetch("/api/export", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({path: {{.Info.Path}}, format: e.target.format.value}),
  });
});
</script>
</body>
</html>
`))
