package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"blogsite/app/services"
)

// SitemapController serves sitemap.xml from the latest snapshot.
type SitemapController struct {
	base
	sitemaps *services.SitemapService
}

func NewSitemapController(sitemaps *services.SitemapService) *SitemapController {
	return &SitemapController{sitemaps: sitemaps}
}

// Show writes the sitemap, answering 304 when the client's copy is current.
func (sc *SitemapController) Show(w http.ResponseWriter, r *http.Request) {
	sc.sitemaps.LearnBaseURL(sc.absoluteBase(r))
	sm, err := sc.sitemaps.Current(r.Context())
	if err != nil {
		sc.handleError(w, r, err)
		return
	}

	w.Header().Set("ETag", sm.ETag)
	w.Header().Set("Last-Modified", sm.Generated.UTC().Format(http.TimeFormat))
	if etagMatches(r.Header.Get("If-None-Match"), sm.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(sm.Body)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health answers 200 while the store responds. store may be nil.
func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
