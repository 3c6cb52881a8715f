package config

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSiteEnvironmentVariables(t *testing.T) {
	t.Setenv("S3_REFERER", "0123456789abcdef-secret")
	t.Setenv("SITE_DIR", "out")

	vars, err := ParseSiteEnvironmentVariables()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef-secret", vars.S3Referer)
	assert.Equal(t, "out", vars.SiteDir)
	assert.Equal(t, "build/dist/preview.zip", vars.PreviewAsset)
	assert.NoError(t, vars.RequireReferer())
}

func TestParseSiteEnvironmentVariables_ShortReferer(t *testing.T) {
	t.Setenv("S3_REFERER", "short")

	_, err := ParseSiteEnvironmentVariables()
	require.Error(t, err)
	assert.ErrorContains(t, err, "validating environment")
}

func TestRequireReferer(t *testing.T) {
	assert.ErrorContains(t, SiteEnvironmentVariables{}.RequireReferer(), "S3_REFERER")
}

func TestParseSiteKind(t *testing.T) {
	k, err := ParseSiteKind("resume")
	require.NoError(t, err)
	assert.Equal(t, SiteResume, k)

	_, err = ParseSiteKind("astro")
	require.ErrorContains(t, err, "invalid site")
}

func TestSiteAndPreviewFromContext(t *testing.T) {
	app := awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{"site": "resume", "preview": "true"},
	})
	site, err := Site(app)
	require.NoError(t, err)
	assert.Equal(t, SiteResume, site)
	assert.True(t, PreviewEnabled(app))

	empty := awscdk.NewApp(nil)
	site, err = Site(empty)
	require.NoError(t, err)
	assert.Equal(t, SiteBlog, site)
	assert.False(t, PreviewEnabled(empty))
}
