package web

import (
	"embed"
	"io/fs"
	"path"
)

var (
	//go:embed static/*
	embeddedStaticFiles embed.FS

	//go:embed templates/*
	embeddedTemplates embed.FS
)

// templateEmbedFS wraps embed.FS as an fs.FS rooted at the templates
// directory, so the view engine sees template names without the prefix.
type templateEmbedFS struct {
	content embed.FS
}

// Open opens the named file relative to the templates directory.
func (e templateEmbedFS) Open(name string) (fs.File, error) {
	return e.content.Open(path.Join("templates", name))
}
