// Package web embeds the HTML templates and static assets of the inventory
// site.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// sub returns the named embedded directory. The directories are compiled in,
// so a failure is a build defect.
func sub(dir string) fs.FS {
	f, err := fs.Sub(content, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory: %v", dir, err))
	}
	return f
}

// StaticFS returns the stylesheet and script served under /static/.
func StaticFS() fs.FS { return sub("static") }

// TemplatesFS returns the layout and page templates.
func TemplatesFS() fs.FS { return sub("templates") }
