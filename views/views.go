// Package views renders the site's HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"flavourkitchen/models"
)

// SiteName is appended to every page title.
const SiteName = "Flavour Kitchen"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and other assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	md        = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

// pages lists every page template; each is parsed together with the layout
// and partials.
var pages = []string{"home", "recipe", "category", "about", "contact", "status"}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"str":         models.Str,
		"markdown":    Markdown,
		"imageURL":    ImageURL,
		"recipeImage": RecipeImage,
		"plural":      plural,
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page name with status. The page is rendered into a buffer
// first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := io.Copy(w, &buf)
	return err
}

// Markdown renders recipe markdown to sanitized HTML. Unrenderable input is
// shown escaped as plain text.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// ImageURL composes a resize-and-crop request onto an image service base URL.
func ImageURL(base string, width, height int) string {
	if base == "" {
		return ""
	}
	sep := "?"
	if u, err := url.Parse(base); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return fmt.Sprintf("%s%sw=%d&h=%d&fit=crop&auto=format,compress", base, sep, width, height)
}

// ResizePath is the route of the local resize proxy used for images that
// have no image service URL.
const ResizePath = "/image"

// RecipeImage picks the best source for an image: the image service when
// available, otherwise the local resize proxy over the storage URL.
func RecipeImage(img *models.ImageRef, width, height int) string {
	switch {
	case img == nil:
		return ""
	case img.ImgixURL != "":
		return ImageURL(img.ImgixURL, width, height)
	case img.URL != "":
		q := url.Values{}
		q.Set("url", img.URL)
		q.Set("h", strconv.Itoa(height))
		return ResizePath + "?" + q.Encode()
	default:
		return ""
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
