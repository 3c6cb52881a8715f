package config

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// SiteKind selects which generation of the site is deployed.
type SiteKind string

const (
	// SiteBlog is the static site served from a private bucket.
	SiteBlog SiteKind = "blog"
	// SiteResume is the exported Next.js site served from website buckets.
	SiteResume SiteKind = "resume"
)

// ParseSiteKind converts a raw string into a SiteKind.
func ParseSiteKind(s string) (SiteKind, error) {
	switch SiteKind(s) {
	case SiteBlog, SiteResume:
		return SiteKind(s), nil
	default:
		return "", fmt.Errorf("invalid site %q", s)
	}
}

// Site reads the "site" context key, defaulting to SiteBlog.
func Site(scope constructs.Construct) (SiteKind, error) {
	v, ok := scope.Node().TryGetContext(jsii.String("site")).(string)
	if !ok || v == "" {
		return SiteBlog, nil
	}
	return ParseSiteKind(v)
}

// PreviewEnabled reads the "preview" context key. Both "true" and true are accepted.
func PreviewEnabled(scope constructs.Construct) bool {
	switch v := scope.Node().TryGetContext(jsii.String("preview")).(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
