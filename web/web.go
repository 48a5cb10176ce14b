// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed assets
var assetsFS embed.FS

const layout = "templates/base.html.tmpl"

// Assets returns the static files rooted at assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewRenderer parses every page together with the base layout. Pages are
// registered under their file name, e.g. "home.html.tmpl".
func NewRenderer(funcs template.FuncMap) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	pages, err := fs.Glob(templatesFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if page == layout {
			continue
		}
		name := path.Base(page)
		tmpl, err := template.New(path.Base(layout)).Funcs(funcs).ParseFS(templatesFS, layout, page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.Add(name, tmpl)
	}
	return r, nil
}
