package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogsite/app/controllers"
	"blogsite/app/mailer"
	"blogsite/app/middleware"
	"blogsite/app/models"
	"blogsite/app/repositories/mock"
	"blogsite/app/services"
	"blogsite/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, *models.Post) {
	templates, err := views.Load(time.UTC)
	require.NoError(t, err)

	store := mock.NewStore()
	post := &models.Post{
		Title:   "Test Post",
		Slug:    "test-post",
		Author:  "admin",
		Body:    "This is a test post",
		Status:  models.StatusPublished,
		Publish: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Posts.Create(context.Background(), post))

	posts := services.NewPostService(store, nil, nil, services.DefaultSettings())
	share := services.NewShareService(store.Posts, &mailer.MemorySender{}, "blog@example.com", time.UTC)
	comments := services.NewCommentService(store.Comments, store.Posts, false)
	sitemaps := services.NewSitemapService(store.Posts, store.Tags, "http://blog.test", time.UTC)

	router := SetupRoutes(Controllers{
		Posts:    controllers.NewPostController(posts, share, templates, ""),
		Comments: controllers.NewCommentController(comments, templates, time.UTC),
		Tags:     controllers.NewTagController(services.NewTagService(store.Tags, nil)),
		Sitemap:  controllers.NewSitemapController(sitemaps),
		Health:   controllers.Health(nil),
	})
	return router, post
}

func serve(router http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	router, post := setupTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"home redirects", http.MethodGet, "/", "", http.StatusFound},
		{"post list", http.MethodGet, "/blog/", "", http.StatusOK},
		{"tag list", http.MethodGet, "/blog/tag/missing/", "", http.StatusNotFound},
		{"post detail", http.MethodGet, "/blog/2024/5/10/test-post/", "", http.StatusOK},
		{"search", http.MethodGet, "/blog/search/?query=test", "", http.StatusOK},
		{"share form", http.MethodGet, fmt.Sprintf("/blog/%d/share/", post.ID), "", http.StatusOK},
		{"comment needs post", http.MethodGet, fmt.Sprintf("/blog/%d/comment/", post.ID), "", http.StatusMethodNotAllowed},
		{"comment", http.MethodPost, fmt.Sprintf("/blog/%d/comment/", post.ID), "name=A&email=a%40b.co&body=hi", http.StatusSeeOther},
		{"sitemap", http.MethodGet, "/sitemap.xml", "", http.StatusOK},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"admin posts", http.MethodGet, "/admin/api/posts", "", http.StatusOK},
		{"admin tags", http.MethodGet, "/admin/api/tags", "", http.StatusOK},
		{"admin comments", http.MethodGet, "/admin/api/comments", "", http.StatusOK},
		{"admin wrong method", http.MethodPatch, "/admin/api/posts", "", http.StatusMethodNotAllowed},
		{"admin wrong method on item", http.MethodPost, "/admin/api/posts/1", "", http.StatusMethodNotAllowed},
		{"list wrong method", http.MethodDelete, "/blog/", "", http.StatusMethodNotAllowed},
		{"health wrong method", http.MethodPost, "/health", "", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoutesMiddleware(t *testing.T) {
	router, _ := setupTestRouter(t)

	t.Run("request id is issued", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/blog/", "")
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/blog/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("admin api answers json", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/admin/api/posts/9999", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
	})

	t.Run("admin api reports wrong method as json", func(t *testing.T) {
		w := serve(router, http.MethodPatch, "/admin/api/tags", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	})

	t.Run("requests are counted by route", func(t *testing.T) {
		serve(router, http.MethodGet, "/blog/", "")
		w := serve(router, http.MethodGet, "/metrics", "")
		assert.Contains(t, w.Body.String(), `blogsite_http_requests_total{method="GET",path="/blog/",status="200"}`)
	})
}
