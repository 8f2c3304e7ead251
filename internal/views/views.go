package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Engine returns a Fiber views engine backed by the embedded templates.
func Engine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The templates are embedded at compile time; this cannot fail
		// unless the directory layout changes.
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
