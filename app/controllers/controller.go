package controllers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"blogsite/app/models"
	"blogsite/app/repositories"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

// APIPrefix is the path prefix of the admin JSON API.
const APIPrefix = "/admin/api"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// base holds the response helpers shared by every controller.
type base struct {
	templates map[string]*template.Template
	baseURL   string
}

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.URL.Path, APIPrefix)
}

// respond writes data as JSON for API clients and through the named
// template otherwise.
func (b *base) respond(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	if wantsJSON(r) {
		b.sendJSON(w, http.StatusOK, data)
		return
	}
	b.render(w, r, name, data)
}

func (b *base) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	tmpl, ok := b.templates[name]
	if !ok {
		log.Ctx(r.Context()).Error().Str("template", name).Msg("Template not loaded")
		b.sendError(w, r, "Template error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("Template error")
		b.sendError(w, r, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (b *base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// MethodNotAllowed answers a known path requested with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	var b base
	b.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
}

func (b *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

// handleError maps a service error onto a status code.
func (b *base) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var fields models.FieldErrors
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		b.sendError(w, r, "Not found", http.StatusNotFound)
	case errors.Is(err, repositories.ErrDuplicateSlug):
		b.sendError(w, r, err.Error(), http.StatusConflict)
	case errors.As(err, &fields):
		if wantsJSON(r) {
			b.sendJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid input", "fields": fields})
			return
		}
		http.Error(w, fields.Error(), http.StatusBadRequest)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		b.sendError(w, r, "Internal server error", http.StatusInternalServerError)
	}
}

// absoluteBase is the scheme and host links in mail and feeds are built on.
func (b *base) absoluteBase(r *http.Request) string {
	if b.baseURL != "" {
		return strings.TrimRight(b.baseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// intVar reads a numeric route variable.
func intVar(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	return n, err == nil
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
