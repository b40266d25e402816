package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const fallbackHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Agent Eat Chatbot</title>
</head>
<body>
    <h1>Agent Eat Chatbot</h1>
    <p>The web interface is not built. The API is available at:</p>
    <ul>
        <li><a href="/api/crews">/api/crews</a></li>
        <li><a href="/api/initialize">/api/initialize</a></li>
    </ul>
</body>
</html>
`

// handleUI serves the built single page app. Unknown paths fall back to
// index.html so client side routes resolve.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if s.uiDir != "" {
		name := filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/"))
		if name != "" {
			file := filepath.Join(s.uiDir, name)
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				http.ServeFile(w, r, file)
				return
			}
		}

		index := filepath.Join(s.uiDir, "index.html")
		if info, err := os.Stat(index); err == nil && !info.IsDir() {
			http.ServeFile(w, r, index)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(fallbackHTML)); err != nil {
		s.logger.Warn("failed to write fallback page", "err", err)
	}
}
