package siteops

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ryands17/cloud-resume/internal/edge"
)

const certArn = "arn:aws:acm:us-east-1:123456789012:certificate/abc"

type fakeSSM struct {
	values map[string]string
	err    error
}

func (f *fakeSSM) GetParameterWithContext(_ aws.Context, in *ssm.GetParameterInput, _ ...request.Option) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.StringValue(in.Name)]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &ssm.Parameter{Value: aws.String(v)}}, nil
}

type fakeACM struct {
	notAfter time.Time
}

func (f *fakeACM) DescribeCertificateWithContext(_ aws.Context, in *acm.DescribeCertificateInput, _ ...request.Option) (*acm.DescribeCertificateOutput, error) {
	if aws.StringValue(in.CertificateArn) != certArn {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &acm.DescribeCertificateOutput{Certificate: &acm.CertificateDetail{
		CertificateArn: in.CertificateArn,
		DomainName:     aws.String("ryan17.dev"),
		Status:         aws.String(acm.CertificateStatusIssued),
		NotAfter:       aws.Time(f.notAfter),
	}}, nil
}

// fakeCloudFront evaluates events with run, standing in for the deployed code.
type fakeCloudFront struct {
	etag    string
	run     func(edge.Event) any
	events  []edge.Event
	ifMatch []string
}

func (f *fakeCloudFront) DescribeFunctionWithContext(_ aws.Context, in *cloudfront.DescribeFunctionInput, _ ...request.Option) (*cloudfront.DescribeFunctionOutput, error) {
	return &cloudfront.DescribeFunctionOutput{ETag: aws.String(f.etag)}, nil
}

func (f *fakeCloudFront) TestFunctionWithContext(_ aws.Context, in *cloudfront.TestFunctionInput, _ ...request.Option) (*cloudfront.TestFunctionOutput, error) {
	var ev edge.Event
	if err := json.Unmarshal(in.EventObject, &ev); err != nil {
		return nil, err
	}
	f.events = append(f.events, ev)
	f.ifMatch = append(f.ifMatch, aws.StringValue(in.IfMatch))

	out, err := json.Marshal(f.run(ev))
	if err != nil {
		return nil, err
	}
	return &cloudfront.TestFunctionOutput{TestResult: &cloudfront.TestResult{
		FunctionOutput: aws.String(string(out)),
	}}, nil
}

func newChecker(t *testing.T, cf FunctionAPI, notAfter time.Time) *Checker {
	t.Helper()
	c := NewChecker(
		&fakeSSM{values: map[string]string{"/portfolio/acmCertArn": certArn}},
		&fakeACM{notAfter: notAfter},
		cf,
		zaptest.NewLogger(t),
	)
	c.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestCheckCertificate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("healthy", func(t *testing.T) {
		c := newChecker(t, nil, now.AddDate(0, 0, 90))
		status, err := c.CheckCertificate(context.Background(), "/portfolio/acmCertArn")
		require.NoError(t, err)
		assert.Equal(t, certArn, status.Arn)
		assert.Equal(t, "ryan17.dev", status.Domain)
		assert.Equal(t, acm.CertificateStatusIssued, status.Status)
		assert.Equal(t, 90, status.DaysLeft)
	})

	t.Run("expiring", func(t *testing.T) {
		c := newChecker(t, nil, now.AddDate(0, 0, 44))
		status, err := c.CheckCertificate(context.Background(), "/portfolio/acmCertArn")
		require.ErrorIs(t, err, ErrCertificateExpiring)
		assert.Equal(t, 44, status.DaysLeft)
	})

	t.Run("at threshold", func(t *testing.T) {
		c := newChecker(t, nil, now.AddDate(0, 0, ExpiryThresholdDays))
		_, err := c.CheckCertificate(context.Background(), "/portfolio/acmCertArn")
		assert.NoError(t, err)
	})

	t.Run("missing parameter", func(t *testing.T) {
		c := newChecker(t, nil, now)
		_, err := c.CheckCertificate(context.Background(), "/other")
		assert.ErrorContains(t, err, "get parameter /other")
	})
}

func TestCertificateArn_NoClient(t *testing.T) {
	c := NewChecker(nil, nil, nil, nil)
	_, err := c.CertificateArn(context.Background(), "/portfolio/acmCertArn")
	assert.Error(t, err)
}

func TestTestEdgeFunction_ViewerRequest(t *testing.T) {
	cf := &fakeCloudFront{
		etag: "E1",
		run: func(ev edge.Event) any {
			return map[string]any{"request": edge.ViewerRequest(ev.Request)}
		},
	}
	c := newChecker(t, cf, time.Time{})

	results, err := c.TestEdgeFunction(context.Background(), "production-fix-sub-pages", "", edge.EventViewerRequest, SampleURIs)
	require.NoError(t, err)
	require.Len(t, results, len(SampleURIs))
	for _, r := range results {
		assert.True(t, r.Match(), r.URI)
	}
	assert.Equal(t, "/blog/index.html", results[1].Got)
	assert.Equal(t, edge.EventViewerRequest, cf.events[0].Context.EventType)
	assert.Equal(t, "E1", cf.ifMatch[0])
}

func TestTestEdgeFunction_ViewerResponseMismatch(t *testing.T) {
	cf := &fakeCloudFront{
		etag: "E2",
		// A deployment that forgot the static asset branch.
		run: func(ev edge.Event) any {
			resp := *ev.Response
			resp.Headers = edge.Headers{edge.CacheControlHeader: {Value: "max-age=86400"}}
			return map[string]any{"response": resp}
		},
	}
	c := newChecker(t, cf, time.Time{})

	results, err := c.TestEdgeFunction(context.Background(), "production-apply-cache-headers", cloudfront.FunctionStageLive,
		edge.EventViewerResponse, []string{"/", "/_next/static/chunks/main.js"})
	require.ErrorIs(t, err, ErrEdgeMismatch)
	require.Len(t, results, 2)
	assert.True(t, results[0].Match())
	assert.False(t, results[1].Match())
	assert.Equal(t, "max-age=604800", results[1].Want)
	assert.Equal(t, "max-age=86400", results[1].Got)
	require.NotNil(t, cf.events[0].Response)
}

func TestTestEdgeFunction_WrongShape(t *testing.T) {
	cf := &fakeCloudFront{
		run: func(ev edge.Event) any {
			return map[string]any{"response": map[string]any{"statusCode": 200}}
		},
	}
	c := newChecker(t, cf, time.Time{})

	results, err := c.TestEdgeFunction(context.Background(), "fn", "", edge.EventViewerRequest, []string{"/blog"})
	require.ErrorIs(t, err, ErrEdgeMismatch)
	assert.Contains(t, results[0].Error, "no viewer-request object")
}

func TestTestEdgeFunction_UnsupportedEvent(t *testing.T) {
	c := newChecker(t, &fakeCloudFront{}, time.Time{})
	_, err := c.TestEdgeFunction(context.Background(), "fn", "", "origin-request", nil)
	assert.ErrorContains(t, err, "unsupported event type")
}
