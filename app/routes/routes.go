package routes

import (
	"net/http"

	"blogsite/app/controllers"
	"blogsite/app/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers are the handlers the router dispatches to.
type Controllers struct {
	Posts    *controllers.PostController
	Comments *controllers.CommentController
	Tags     *controllers.TagController
	Sitemap  *controllers.SitemapController
	Health   http.Handler
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(c Controllers) *mux.Router {
	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.Handle("/health", c.Health).Methods("GET", "HEAD")
	router.HandleFunc("/sitemap.xml", c.Sitemap.Show).Methods("GET", "HEAD")
	router.Handle("/", http.RedirectHandler("/blog/", http.StatusFound)).Methods("GET")

	// Public blog
	// Subrouters do not report method mismatches to the parent.
	blog := router.PathPrefix("/blog").Subrouter()
	blog.MethodNotAllowedHandler = router.MethodNotAllowedHandler
	blog.HandleFunc("/", c.Posts.List).Methods("GET")
	blog.HandleFunc("/tag/{tag}/", c.Posts.List).Methods("GET")
	blog.HandleFunc("/search/", c.Posts.Search).Methods("GET")
	blog.HandleFunc("/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/{slug}/", c.Posts.Detail).Methods("GET")
	blog.HandleFunc("/{id:[0-9]+}/share/", c.Posts.Share)
	blog.HandleFunc("/{id:[0-9]+}/comment/", c.Comments.Create)

	// Admin API
	api := router.PathPrefix(controllers.APIPrefix).Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.MethodNotAllowedHandler = router.MethodNotAllowedHandler

	api.HandleFunc("/posts", c.Posts.Index).Methods("GET")
	api.HandleFunc("/posts", c.Posts.Create).Methods("POST")
	api.HandleFunc("/posts/{id:[0-9]+}", c.Posts.Show).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}", c.Posts.Update).Methods("PUT")
	api.HandleFunc("/posts/{id:[0-9]+}", c.Posts.Delete).Methods("DELETE")

	api.HandleFunc("/tags", c.Tags.Index).Methods("GET")
	api.HandleFunc("/tags", c.Tags.Create).Methods("POST")

	api.HandleFunc("/comments", c.Comments.Index).Methods("GET")
	api.HandleFunc("/comments/{id:[0-9]+}/activate", c.Comments.Activate).Methods("POST")
	api.HandleFunc("/comments/{id:[0-9]+}", c.Comments.Delete).Methods("DELETE")

	return router
}
