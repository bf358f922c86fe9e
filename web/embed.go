// Package web holds the HTML templates and browser assets compiled into the
// fintrack binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/*
var files embed.FS

// TemplatesFS is rooted at the templates directory, so page names match
// their file names.
var TemplatesFS = mustSub("templates")

// StaticFS is rooted at the static directory and is served under /static/.
var StaticFS = mustSub("static")

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
