// Package frontend is the web-fleet server: it serves the static page that
// asks the gateway for fortunes, plus the health endpoint the target group
// probes.
package frontend

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
)

//go:embed static
var static embed.FS

// HostHeader names the fleet member that served the page.
const HostHeader = "X-Served-By"

// Handler serves the embedded page at / and "ok" at /health.
func Handler(logger *slog.Logger) http.Handler {
	content, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	files := http.FileServerFS(content)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Serving page", slog.String("path", r.URL.Path))
		w.Header().Set(HostHeader, hostname)
		files.ServeHTTP(w, r)
	})

	return mux
}
