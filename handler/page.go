package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/stevemurr/simple-todo-server/store"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// renderPage writes the full todo page. It renders into a buffer first so a
// template failure still produces a clean 500.
func renderPage(w http.ResponseWriter, todos []store.Todo) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, struct{ Todos []store.Todo }{todos}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
