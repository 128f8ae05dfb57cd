// Package web holds the page templates, compiled into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"path"

	"github.com/gin-contrib/multitemplate"
)

//go:embed templates
var templatesFS embed.FS

const layout = "templates/layouts/base.html"

// Pages lists every view a handler may render, keyed by the name handlers
// pass to Render.
var Pages = []string{
	"index.html",
	"register.html",
	"login.html",
	"create_recipe.html",
	"recipe_detail.html",
	"search.html",
	"change_password.html",
	"error.html",
}

// NewRenderer parses each view together with the base layout.
func NewRenderer() (multitemplate.Render, error) {
	r := multitemplate.New()
	funcs := FuncMap()

	for _, name := range Pages {
		view := "templates/views/" + name
		tmpl, err := template.New(path.Base(layout)).Funcs(funcs).ParseFS(templatesFS, layout, view)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.Add(name, tmpl)
	}
	return r, nil
}
