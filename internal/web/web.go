// Package web holds the server-rendered pages and the gin renderer for them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/gin-gonic/gin/render"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

//go:embed templates
var files embed.FS

const (
	layoutFile = "templates/layout.html"
	pagesDir   = "templates/pages"
	// ErrorPage renders any status with a message.
	ErrorPage = "errors/error"
)

// Renderer implements render.HTMLRender. Each page is parsed together with
// the layout so every page can define its own "content" block.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func NewRenderer(loc *time.Location) (*Renderer, error) {
	funcs := Funcs(loc)
	r := &Renderer{pages: map[string]*template.Template{}}
	err := fs.WalkDir(files, pagesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		t, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(files, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, pagesDir+"/"), ".html")
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, ok := r.pages[ErrorPage]; !ok {
		return nil, fmt.Errorf("missing %s template", ErrorPage)
	}
	return r, nil
}

// Instance renders name, falling back to the error page for unknown names.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages[ErrorPage]
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

// Funcs are the helpers available in every template.
func Funcs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(loc).Format("02 Jan 2006")
		},
		"ymd": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format(models.DateLayout)
		},
		"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
		"hex":   func(id primitive.ObjectID) string { return id.Hex() },
		"base":  path.Base,
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}
}
