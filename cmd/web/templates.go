package main

import (
	"html/template"
	"path/filepath"
	"time"

	"github.com/barrigacheea/marketplace/internal/forms"
	"github.com/barrigacheea/marketplace/internal/produto"
	"github.com/barrigacheea/marketplace/internal/user"
)

// templateData holds everything the pages can render.
type templateData struct {
	CSRFToken       string
	Counts          map[produto.Status]int
	CurrentYear     int
	Flash           string
	Form            *forms.Form
	IsAuthenticated bool
	Produto         *produto.Produto
	Query           string
	Sections        map[produto.Status][]produto.Produto
	Sort            string
	Statuses        []produto.Status
	Total           int
	User            *user.User
	Version         string
}

// humanDate formats timestamps the Brazilian way.
func humanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

var functions = template.FuncMap{
	"humanDate": humanDate,
	"badge": func(s produto.Status) produto.Badge {
		return s.Badge()
	},
}

func newTemplateCache(dir string) (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := filepath.Glob(filepath.Join(dir, "*.page.tmpl"))
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		ts, err := template.New(name).Funcs(functions).ParseFiles(page)
		if err != nil {
			return nil, err
		}

		ts, err = ts.ParseGlob(filepath.Join(dir, "*.layout.tmpl"))
		if err != nil {
			return nil, err
		}

		ts, err = ts.ParseGlob(filepath.Join(dir, "*.partial.tmpl"))
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
