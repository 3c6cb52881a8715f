package edge

import (
	"bytes"
	"embed"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateName names an embedded CloudFront Function template.
type TemplateName string

const (
	TplViewerRequest  TemplateName = "viewer_request.js.tmpl"
	TplViewerResponse TemplateName = "viewer_response.js.tmpl"
)

const templateDir = "templates/"

//go:embed templates/*.tmpl
var tplFS embed.FS

var tplCache sync.Map

type viewerRequestData struct {
	IndexDocument string
}

type viewerResponseData struct {
	Header            string
	StaticAssetPrefix string
	DefaultMaxAge     int
	StaticMaxAge      int
}

// Render executes the named template with data.
func Render(name TemplateName, data any) (string, error) {
	t, err := lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return buf.String(), nil
}

func lookup(name TemplateName) (*template.Template, error) {
	if v, ok := tplCache.Load(name); ok {
		return v.(*template.Template), nil
	}
	path := templateDir + string(name)
	t, err := template.New(string(name)).
		Funcs(sprig.TxtFuncMap()).
		ParseFS(tplFS, path)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", path, err)
	}
	actual, _ := tplCache.LoadOrStore(name, t)
	return actual.(*template.Template), nil
}

// ViewerRequestCode returns the CloudFront Function source implementing RewriteURI.
func ViewerRequestCode() (string, error) {
	return Render(TplViewerRequest, viewerRequestData{IndexDocument: IndexDocument})
}

// ViewerResponseCode returns the CloudFront Function source implementing CacheControl.
func ViewerResponseCode() (string, error) {
	return Render(TplViewerResponse, viewerResponseData{
		Header:            CacheControlHeader,
		StaticAssetPrefix: StaticAssetPrefix,
		DefaultMaxAge:     OneDay,
		StaticMaxAge:      OneWeek,
	})
}
