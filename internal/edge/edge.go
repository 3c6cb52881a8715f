// Package edge holds the request and response rules applied at the CDN edge.
//
// The Go functions are the reference for the CloudFront Function sources
// rendered by ViewerRequestCode and ViewerResponseCode, and are reused by
// the preview server so local runs behave like the distribution.
package edge

import (
	"fmt"
	"strings"
)

const (
	// OneDay is the browser cache lifetime, in seconds, of ordinary pages.
	OneDay = 86400
	// OneWeek is the lifetime of content-hashed static assets.
	OneWeek = OneDay * 7

	// StaticAssetPrefix marks build output with content-hashed names.
	StaticAssetPrefix = "/_next/static/"

	// IndexDocument is appended to directory-like URIs.
	IndexDocument = "index.html"

	// CacheControlHeader is the lower-case header key CloudFront Functions use.
	CacheControlHeader = "cache-control"
)

// MaxAge returns the browser cache lifetime, in seconds, for uri.
func MaxAge(uri string) int {
	if strings.Contains(uri, StaticAssetPrefix) {
		return OneWeek
	}
	return OneDay
}

// CacheControl returns the Cache-Control header value for uri.
func CacheControl(uri string) string {
	return fmt.Sprintf("max-age=%d", MaxAge(uri))
}

// RewriteURI maps directory-like URIs onto their index document.
// URIs that already name a file are returned unchanged.
func RewriteURI(uri string) string {
	switch {
	case strings.HasSuffix(uri, "/"):
		return uri + IndexDocument
	case !strings.Contains(uri, "."):
		return uri + "/" + IndexDocument
	default:
		return uri
	}
}
