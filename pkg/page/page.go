// Package page renders the html pages of the service.
package page

import (
	"html/template"
	"io"

	"github.com/pkg/errors"
)

const base = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://maxcdn.bootstrapcdn.com/bootstrap/4.0.0-alpha.2/css/bootstrap.min.css" integrity="sha384-y3tfxAZXuh4HwSYylfB+J125MxIs6mR5FOHamPBG064zB+AFeWH94NdvaCBm8qnd" crossorigin="anonymous">
    <style>
    body {
      padding-top: 5rem;
    }
    .lander {
      padding: 3rem 1.5rem;
      text-align: center;
    }
    </style>
</head>
<body>
<div class="container">
    <div class="lander">
        <h1><a href="https://github.com/kujenga/peekaboo">{{.Title}}</a> server</h1>
        {{template "page" .}}
    </div>
</div>
</body>
</html>
`

const index = `{{define "page"}}<p>I see you!</p>{{end}}`

const info = `{{define "page"}}<p><strong>{{.Name}}</strong> has had {{.Count}} visitors!</p>{{end}}`

// Renderer holds the parsed page templates
type Renderer struct {
	index *template.Template
	info  *template.Template
}

type indexData struct {
	Title string
}

type infoData struct {
	Title string
	Name  string
	Count int64
}

func NewRenderer() (*Renderer, error) {
	indexTmpl, err := parse("index", index)
	if err != nil {
		return nil, err
	}

	infoTmpl, err := parse("info", info)
	if err != nil {
		return nil, err
	}

	return &Renderer{index: indexTmpl, info: infoTmpl}, nil
}

func parse(name, page string) (*template.Template, error) {
	t, err := template.New(name).Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing base for %s", name)
	}

	t, err = t.Parse(page)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %s", name)
	}

	return t, nil
}

// Index writes the landing page
func (r *Renderer) Index(w io.Writer, title string) error {
	return errors.Wrap(r.index.Execute(w, indexData{Title: title}), "error rendering index")
}

// Info writes the visitor count page of the given name
func (r *Renderer) Info(w io.Writer, title string, name string, count int64) error {
	err := r.info.Execute(w, infoData{Title: title, Name: name, Count: count})
	return errors.Wrap(err, "error rendering info")
}
