package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// SiteEnvironmentVariables are the build-time settings that must not live in cdk.json.
type SiteEnvironmentVariables struct {
	// S3Referer is the shared secret CloudFront sends as Referer; only requests
	// carrying it may read the website buckets directly.
	S3Referer string `env:"S3_REFERER" validate:"omitempty,min=16"`
	// SiteDir is the built site to upload. Empty selects the site's default.
	SiteDir string `env:"SITE_DIR"`
	// PreviewAsset is the zipped preview server (bootstrap + site).
	PreviewAsset string `env:"PREVIEW_ASSET" envDefault:"build/dist/preview.zip" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseSiteEnvironmentVariables reads and validates SiteEnvironmentVariables.
func ParseSiteEnvironmentVariables() (SiteEnvironmentVariables, error) {
	vars, err := env.ParseAs[SiteEnvironmentVariables]()
	if err != nil {
		return SiteEnvironmentVariables{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := validate.Struct(vars); err != nil {
		return SiteEnvironmentVariables{}, fmt.Errorf("validating environment: %w", err)
	}
	return vars, nil
}

// RequireReferer fails unless a referer secret is configured.
func (v SiteEnvironmentVariables) RequireReferer() error {
	if v.S3Referer == "" {
		return fmt.Errorf("S3_REFERER must be set for website buckets")
	}
	return nil
}
