// Package handler provides the HTTP handlers for the todo server.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/stevemurr/simple-todo-server/notify"
	"github.com/stevemurr/simple-todo-server/store"
)

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store    store.Store
	notifier notify.Notifier
	logger   *log.Logger
	origins  []string
	router   *mux.Router
	root     http.Handler
}

// Option customizes a Handler.
type Option func(*Handler)

// WithNotifier sets the notifier invoked after each successful add.
func WithNotifier(n notify.Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

// WithLogger sets the logger used for access and error logging.
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithAllowedOrigins enables CORS for the given origins ("*" allows all).
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.origins = origins }
}

// New creates a Handler and wires up all routes.
func New(s store.Store, opts ...Option) *Handler {
	h := &Handler{
		store:    s,
		notifier: notify.Nop{},
		logger:   log.Default(),
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.routes()

	// Middleware wraps the router rather than using router.Use so that
	// preflight and unmatched requests are also covered.
	h.root = h.router
	if len(h.origins) > 0 {
		h.root = corsMiddleware(h.origins)(h.root)
	}
	h.root = h.accessLog(h.root)
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Methods(http.MethodGet).Path("/").HandlerFunc(h.index)
	h.router.Methods(http.MethodGet).Path("/health").HandlerFunc(h.health)

	h.router.Methods(http.MethodPost).Path("/add").HandlerFunc(h.addTodo)
	h.router.Methods(http.MethodPost).Path("/toggle/{id}").HandlerFunc(h.toggleTodo)
	h.router.Methods(http.MethodPost).Path("/delete/{id}").HandlerFunc(h.deleteTodo)
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// writeStoreError maps store failures onto the HTTP error contract.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *store.ValidationError
	var nf *store.NotFoundError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Detail)
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error())
	default:
		h.logger.Error("store failure", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// ---------- status endpoints ----------

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	todos, err := h.store.List()
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if err := renderPage(w, todos); err != nil {
		h.logger.Error("render page", "err", err)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ---------- mutations ----------

func (h *Handler) addTodo(w http.ResponseWriter, r *http.Request) {
	// A missing field reads as "" and fails validation as empty.
	todo, err := h.store.Add(r.PostFormValue("text"))
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.logger.Debug("todo added", "id", todo.ID)
	h.notifyCreated(todo)
	writeSuccess(w)
}

func (h *Handler) toggleTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.store.Toggle(mux.Vars(r)["id"])
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.logger.Debug("todo toggled", "id", todo.ID, "completed", todo.Completed)
	writeSuccess(w)
}

func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.logger.Debug("todo deleted", "id", id)
	writeSuccess(w)
}

// notifyCreated hands the creation message to the notifier without waiting.
// The request context is not reused: it ends with the response.
func (h *Handler) notifyCreated(todo store.Todo) {
	msg := fmt.Sprintf("New todo added: %s", todo.Text)
	n, logger := h.notifier, h.logger
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("notifier panicked", "panic", p)
			}
		}()
		n.Notify(context.Background(), msg)
	}()
}
