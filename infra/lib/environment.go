package lib

import (
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvPR          = "pr"
)

// Environment represents the deployment environment
type Environment struct {
	Name     string
	PRNumber string
	Version  string
	Username string
	IsPR     bool
}

var upperWords = regexp.MustCompile("[A-Z][^A-Z]*")

// getCurrentUsername retrieves the current username from the environment variables
func getCurrentUsername() string {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	if len(username) == 0 {
		username = "default"
	}
	return username
}

// kebabCase converts a PascalCase string to kebab-case; other input is lower-cased.
func kebabCase(s string) string {
	words := upperWords.FindAllString(s, -1)
	if len(words) == 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(strings.Join(words, "-"))
}

// GetEnvPrefix returns the label identifying this environment in names.
func (e *Environment) GetEnvPrefix() string {
	switch e.Name {
	case EnvPR:
		return e.Name + "-" + e.PRNumber
	case EnvDevelopment:
		username := e.Username
		if username == "" {
			username = getCurrentUsername()
		}
		return e.Name + "-" + username
	default:
		return e.Name
	}
}

// GetStackName prefixes suffix with the environment, e.g. production-global-stack.
func (e *Environment) GetStackName(suffix string) string {
	return e.GetEnvPrefix() + "-" + kebabCase(suffix)
}

// Tags returns the tags applied to every resource of the app.
func (e *Environment) Tags() map[string]string {
	tags := map[string]string{
		"Environment": e.Name,
		"Username":    e.Username,
	}
	if e.IsPR {
		tags["PR"] = e.PRNumber
	}
	if e.Version != "" {
		tags["Version"] = e.Version
	}
	return tags
}

// GetEnvironmentFromContext extracts environment information from CDK context
func GetEnvironmentFromContext(app awscdk.App) Environment {
	if app == nil {
		panic("CDK app is nil. Cannot extract environment context.")
	}

	env := Environment{Name: EnvDevelopment}

	if name := contextString(app, "environment"); name != "" {
		env.Name = name
	}
	if pr := contextString(app, "pr_number"); pr != "" {
		env.PRNumber = pr
		env.IsPR = true
		env.Name = EnvPR
	}
	env.Version = contextString(app, "version")
	// A commit sha is more precise than a release version.
	if sha := contextString(app, "sha"); sha != "" {
		env.Version = sha
	}

	env.Username = contextString(app, "username")
	if env.Username == "" {
		env.Username = getCurrentUsername()
	}

	return env
}

func contextString(app awscdk.App, key string) string {
	if v, ok := app.Node().TryGetContext(jsii.String(key)).(string); ok {
		return v
	}
	return ""
}
