// Package views embeds and parses the HTML templates. Every page is parsed
// together with the layout and the shared includes, and is executed through
// the "layout" template.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"blogsite/app/models"
)

//go:embed templates
var files embed.FS

// Page template names.
const (
	PostList    = "post/list"
	PostDetail  = "post/detail"
	PostSearch  = "post/search"
	PostShare   = "post/share"
	PostComment = "post/comment"
)

var pages = []string{PostList, PostDetail, PostSearch, PostShare, PostComment}

var shared = []string{"templates/layout.html", "templates/includes/pagination.html", "templates/includes/comment_form.html"}

// Pager is what the pagination include renders.
type Pager struct {
	Number   int
	NumPages int
	Previous string
	Next     string
}

// NewPager builds the previous/next links of page number out of numPages.
// params are extra url-encoded query parameters kept on every link.
func NewPager(number, numPages int, params string) Pager {
	link := func(n int) string {
		q := "page=" + strconv.Itoa(n)
		if params != "" {
			q = params + "&" + q
		}
		return "?" + q
	}
	p := Pager{Number: number, NumPages: numPages}
	if number > 1 {
		p.Previous = link(number - 1)
	}
	if number < numPages {
		p.Next = link(number + 1)
	}
	return p
}

// TruncateWords shortens s to n words, appending an ellipsis when cut.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// Load parses every page. The page is parsed last so its blocks override
// the layout defaults. loc is the time zone post URLs and dates use.
func Load(loc *time.Location) (map[string]*template.Template, error) {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"postPath": func(p *models.Post) string { return p.Path(loc) },
		"date": func(t time.Time) string {
			return t.In(loc).Format("January 2, 2006")
		},
		"datetime": func(t time.Time) string {
			return t.In(loc).Format("January 2, 2006 15:04")
		},
		"truncatewords": func(n int, s string) string { return TruncateWords(s, n) },
		"linebreaks": func(s string) []string {
			return strings.FieldsFunc(strings.ReplaceAll(s, "\r\n", "\n"), func(r rune) bool { return r == '\n' })
		},
		"pager":       NewPager,
		"queryEscape": url.QueryEscape,
	}

	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		patterns := append(append([]string{}, shared...), "templates/"+name+".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}
