package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogsite/app/mailer"
	"blogsite/app/models"
	"blogsite/app/repositories"
	"blogsite/app/repositories/mock"
	"blogsite/app/services"
	"blogsite/app/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

var published = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type testApp struct {
	store    *repositories.Store
	outbox   *mailer.MemorySender
	router   *mux.Router
	posts    *services.PostService
	comments *services.CommentService
	tags     map[string]*models.Tag
}

func setupTestApp(t *testing.T) *testApp {
	templates, err := views.Load(time.UTC)
	require.NoError(t, err)

	app := &testApp{
		store:  mock.NewStore(),
		outbox: &mailer.MemorySender{},
		tags:   make(map[string]*models.Tag),
	}
	app.posts = services.NewPostService(app.store, nil, nil, services.DefaultSettings())
	app.comments = services.NewCommentService(app.store.Comments, app.store.Posts, false)
	share := services.NewShareService(app.store.Posts, app.outbox, "blog@example.com", time.UTC)
	sitemaps := services.NewSitemapService(app.store.Posts, app.store.Tags, "http://blog.test", time.UTC)

	pc := NewPostController(app.posts, share, templates, "")
	cc := NewCommentController(app.comments, templates, time.UTC)
	tc := NewTagController(services.NewTagService(app.store.Tags, nil))
	sc := NewSitemapController(sitemaps)

	// Register routes manually, the routes package imports this one
	router := mux.NewRouter()
	router.HandleFunc("/sitemap.xml", sc.Show).Methods("GET")
	router.HandleFunc("/blog/", pc.List).Methods("GET")
	router.HandleFunc("/blog/tag/{tag}/", pc.List).Methods("GET")
	router.HandleFunc("/blog/search/", pc.Search).Methods("GET")
	router.HandleFunc("/blog/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}/", pc.Detail).Methods("GET")
	router.HandleFunc("/blog/{id:[0-9]+}/share/", pc.Share)
	router.HandleFunc("/blog/{id:[0-9]+}/comment/", cc.Create)
	router.HandleFunc("/admin/api/posts", pc.Index).Methods("GET")
	router.HandleFunc("/admin/api/posts", pc.Create).Methods("POST")
	router.HandleFunc("/admin/api/posts/{id:[0-9]+}", pc.Show).Methods("GET")
	router.HandleFunc("/admin/api/posts/{id:[0-9]+}", pc.Update).Methods("PUT")
	router.HandleFunc("/admin/api/posts/{id:[0-9]+}", pc.Delete).Methods("DELETE")
	router.HandleFunc("/admin/api/tags", tc.Index).Methods("GET")
	router.HandleFunc("/admin/api/tags", tc.Create).Methods("POST")
	router.HandleFunc("/admin/api/comments", cc.Index).Methods("GET")
	router.HandleFunc("/admin/api/comments/{id:[0-9]+}/activate", cc.Activate).Methods("POST")
	router.HandleFunc("/admin/api/comments/{id:[0-9]+}", cc.Delete).Methods("DELETE")
	app.router = router
	return app
}

func (a *testApp) tag(t *testing.T, slug string) *models.Tag {
	tag := &models.Tag{Name: slug, Slug: slug}
	require.NoError(t, a.store.Tags.Create(context.Background(), tag))
	a.tags[slug] = tag
	return tag
}

// post stores a published post daysAgo days before the fixed publish date.
func (a *testApp) post(t *testing.T, slug, title, body string, daysAgo int, tagSlugs ...string) *models.Post {
	tags := make([]*models.Tag, 0, len(tagSlugs))
	for _, s := range tagSlugs {
		tags = append(tags, a.tags[s])
	}
	p := &models.Post{
		Title:   title,
		Slug:    slug,
		Author:  "admin",
		Body:    body,
		Status:  models.StatusPublished,
		Publish: published.AddDate(0, 0, -daysAgo),
		Created: published,
		Updated: published,
	}
	p.SetTags(tags)
	require.NoError(t, a.store.Posts.Create(context.Background(), p))
	return p
}

func (a *testApp) draft(t *testing.T, slug string) *models.Post {
	p := a.post(t, slug, slug, "draft body", 0)
	p.Status = models.StatusDraft
	require.NoError(t, a.store.Posts.Update(context.Background(), p))
	return p
}

func (a *testApp) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, "", nil)
}

func (a *testApp) getJSON(target string) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, "", map[string]string{"Accept": "application/json"})
}

func (a *testApp) postForm(target, body string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, body, map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
}

func (a *testApp) sendJSON(method, target, body string) *httptest.ResponseRecorder {
	return a.do(method, target, body, map[string]string{"Content-Type": "application/json"})
}
