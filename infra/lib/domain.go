package lib

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

const (
	// CertRegion is fixed because CloudFront only accepts certificates from us-east-1.
	CertRegion = "us-east-1"

	DefaultApexDomain = "ryan17.dev"
	DefaultAcmArnPath = "/portfolio/acmCertArn"
	DefaultSiteRegion = "us-east-2"
)

// DomainConfig contains the domain configuration of the site
type DomainConfig struct {
	// The apex domain name (e.g., "ryan17.dev")
	Apex string

	// The www alias, redirected to or served alongside the apex
	Www string

	// SSM parameter path holding the certificate ARN
	AcmArnPath string

	CertRegion string
	SiteRegion string
}

// WildcardDomain returns *.<apex>
func (d *DomainConfig) WildcardDomain() string {
	return fmt.Sprintf("*.%s", d.Apex)
}

// AlternateNames returns every name a distribution answers to besides the apex.
func (d *DomainConfig) AlternateNames() []string {
	return []string{d.Www}
}

// CertParameterArn returns the ARN pattern of the certificate parameter, any account.
func (d *DomainConfig) CertParameterArn() string {
	return fmt.Sprintf("arn:aws:ssm:%s:*:parameter%s", d.CertRegion, d.AcmArnPath)
}

// SiteURL returns the public https URL of the apex.
func (d *DomainConfig) SiteURL() string {
	return "https://" + d.Apex
}

// DefaultDomainConfig returns a configuration with default values
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		Apex:       DefaultApexDomain,
		Www:        "www." + DefaultApexDomain,
		AcmArnPath: DefaultAcmArnPath,
		CertRegion: CertRegion,
		SiteRegion: DefaultSiteRegion,
	}
}

// GetDomainConfigFromContext reads the "domain", "acmArnPath" and "region"
// context keys, falling back to DefaultDomainConfig for anything unset.
func GetDomainConfigFromContext(scope constructs.Construct) *DomainConfig {
	cfg := DefaultDomainConfig()
	node := scope.Node()

	if domain, ok := node.TryGetContext(jsii.String("domain")).(map[string]interface{}); ok {
		if apex, ok := domain["apex"].(string); ok && apex != "" {
			cfg.Apex = apex
			cfg.Www = "www." + apex
		}
		if www, ok := domain["www"].(string); ok && www != "" {
			cfg.Www = www
		}
	}
	if path, ok := node.TryGetContext(jsii.String("acmArnPath")).(string); ok && path != "" {
		cfg.AcmArnPath = path
	}
	if region, ok := node.TryGetContext(jsii.String("region")).(string); ok && region != "" {
		cfg.SiteRegion = region
	}

	return cfg
}
