package edge

import (
	"encoding/json"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

// edgeURIs exercises both branches of each rule, including the
// substring and dotted-directory cases.
var edgeURIs = []string{
	"",
	"/",
	"/blog",
	"/blog/",
	"/blog/post.html",
	"/tags/go",
	"/v1.2/notes",
	"/static/images/avatar.png",
	"/_next/static/chunks/main-abc123.js",
	"/_next/static/",
	"/x/_next/static/",
	"/_next/staticx",
	"/_next/image?url=a.png",
}

// runHandler evaluates rendered CloudFront Function code and calls its
// handler with ev, returning the exported result.
func runHandler(t *testing.T, code string, ev Event) map[string]interface{} {
	t.Helper()
	vm := goja.New()
	_, err := vm.RunString(code)
	require.NoError(t, err)

	handler, ok := goja.AssertFunction(vm.Get("handler"))
	require.True(t, ok, "rendered code defines no handler")

	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	arg, err := vm.RunString("(" + string(payload) + ")")
	require.NoError(t, err)

	out, err := handler(goja.Undefined(), arg)
	require.NoError(t, err)
	result, ok := out.Export().(map[string]interface{})
	require.True(t, ok, "handler returned %T", out.Export())
	return result
}

func TestViewerRequestCode_MatchesRewriteURI(t *testing.T) {
	code, err := ViewerRequestCode()
	require.NoError(t, err)

	for _, uri := range edgeURIs {
		t.Run(uri, func(t *testing.T) {
			got := runHandler(t, code, NewRequestEvent(uri))
			require.Equal(t, RewriteURI(uri), got["uri"])
		})
	}
}

func TestViewerResponseCode_MatchesCacheControl(t *testing.T) {
	code, err := ViewerResponseCode()
	require.NoError(t, err)

	for _, uri := range edgeURIs {
		t.Run(uri, func(t *testing.T) {
			got := runHandler(t, code, NewResponseEvent(uri))

			headers, ok := got["headers"].(map[string]interface{})
			require.True(t, ok)
			header, ok := headers[CacheControlHeader].(map[string]interface{})
			require.True(t, ok, "no %s header", CacheControlHeader)
			require.Equal(t, CacheControl(uri), header["value"])
			require.EqualValues(t, 200, got["statusCode"])
		})
	}
}
