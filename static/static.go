// Package static embeds the HTML fragments, index page and translation
// catalogs served by the web UI.
package static

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed files
var embedded embed.FS

const localDir = "static/files/"

func files() fs.FS {
	// a local static/files/ dir takes precedence while developing
	if info, err := os.Stat(localDir); err == nil && info.IsDir() {
		return os.DirFS(localDir)
	}
	sub, _ := fs.Sub(embedded, "files")
	return sub
}

// FileSystemHandler serves every static file.
func FileSystemHandler() http.Handler {
	return http.FileServer(http.FS(files()))
}

func ReadAll(name string) ([]byte, error) {
	return fs.ReadFile(files(), name)
}

// Templates parses every HTML fragment under template/, each named by its
// file name. funcs must provide "_".
func Templates(funcs template.FuncMap) (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files(), "template/*.html")
}

// TemplateSources returns the raw text of every template, keyed by name.
func TemplateSources() (map[string][]byte, error) {
	names, err := fs.Glob(files(), "template/*.html")
	if err != nil {
		return nil, err
	}
	out := map[string][]byte{}
	for _, n := range names {
		b, err := ReadAll(n)
		if err != nil {
			return nil, err
		}
		out[path.Base(n)] = b
	}
	return out, nil
}

// Catalogs returns the bundled translation files keyed by language tag.
func Catalogs() (map[string][]byte, error) {
	names, err := fs.Glob(files(), "i18n/*.yaml")
	if err != nil {
		return nil, err
	}
	out := map[string][]byte{}
	for _, n := range names {
		b, err := ReadAll(n)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(path.Base(n), ".yaml")] = b
	}
	return out, nil
}
