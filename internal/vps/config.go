package vps

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

// Config holds the stack settings of the VPS program.
type Config struct {
	Domain     string `validate:"required,fqdn"`
	ServerName string `validate:"required"`
	ServerType string `validate:"required"`
	Location   string `validate:"required"`
	// ImageRepo and Version form the tag of the locally built app image.
	ImageRepo string `validate:"required"`
	Version   string `validate:"required"`
	// BuildContext and Dockerfile locate the app image sources.
	BuildContext string `validate:"required"`
	Dockerfile   string `validate:"required"`
	Platform     string `validate:"required"`
	// KeyPath is where the generated private key is written for the docker provider.
	KeyPath string `validate:"required"`
}

// DefaultConfig is a single ARM server in Helsinki serving ryan17.dev.
func DefaultConfig() Config {
	return Config{
		Domain:       "ryan17.dev",
		ServerName:   "appServer",
		ServerType:   "cax11",
		Location:     "hel1",
		ImageRepo:    "cloud-resume/cloud-resume",
		Version:      "latest",
		BuildContext: "../..",
		Dockerfile:   "../../Dockerfile",
		Platform:     "linux/arm64",
		KeyPath:      "id_ed25519_hetzner",
	}
}

// ImageName is the full tag of the app image.
func (c Config) ImageName() string {
	return c.ImageRepo + ":" + c.Version
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid vps config: %w", err)
	}
	return nil
}

// LoadConfig overlays the project's stack config onto DefaultConfig.
func LoadConfig(ctx *pulumi.Context) (Config, error) {
	cfg := DefaultConfig()
	conf := config.New(ctx, "")

	for key, field := range map[string]*string{
		"domain":       &cfg.Domain,
		"serverName":   &cfg.ServerName,
		"serverType":   &cfg.ServerType,
		"location":     &cfg.Location,
		"imageRepo":    &cfg.ImageRepo,
		"version":      &cfg.Version,
		"buildContext": &cfg.BuildContext,
		"dockerfile":   &cfg.Dockerfile,
		"platform":     &cfg.Platform,
		"keyPath":      &cfg.KeyPath,
	} {
		if v := conf.Get(key); v != "" {
			*field = v
		}
	}

	return cfg, cfg.Validate()
}
