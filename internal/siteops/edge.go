package siteops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ryands17/cloud-resume/internal/edge"
)

// SampleURIs cover both branches of each edge rule.
var SampleURIs = []string{
	"/",
	"/blog",
	"/blog/",
	"/blog/post.html",
	"/_next/static/chunks/main.js",
	"/assets/_next/static/app.css",
	"/favicon.ico",
}

// EdgeResult compares one deployed function run with the reference rule.
type EdgeResult struct {
	URI   string
	Want  string
	Got   string
	Error string
}

// Match reports whether the deployed function agreed with the reference.
func (r EdgeResult) Match() bool {
	return r.Error == "" && r.Want == r.Got
}

type functionOutput struct {
	Request  *edge.Request  `json:"request"`
	Response *edge.Response `json:"response"`
}

// TestEdgeFunction runs the named CloudFront Function against every uri and
// compares its output with the Go rule for eventType. stage is DEVELOPMENT or
// LIVE. ErrEdgeMismatch is returned with the results when any run disagrees.
func (c *Checker) TestEdgeFunction(ctx context.Context, name, stage, eventType string, uris []string) ([]EdgeResult, error) {
	if c.functions == nil {
		return nil, errors.New("no CloudFront client configured")
	}
	if eventType != edge.EventViewerRequest && eventType != edge.EventViewerResponse {
		return nil, fmt.Errorf("unsupported event type %q", eventType)
	}
	if stage == "" {
		stage = cloudfront.FunctionStageLive
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	desc, err := c.functions.DescribeFunctionWithContext(ctx, &cloudfront.DescribeFunctionInput{
		Name:  aws.String(name),
		Stage: aws.String(stage),
	})
	if err != nil {
		return nil, fmt.Errorf("describe function %s: %w", name, err)
	}

	results := make([]EdgeResult, 0, len(uris))
	for _, uri := range uris {
		res, err := c.testOne(ctx, name, stage, aws.StringValue(desc.ETag), eventType, uri)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	failed := lo.Filter(results, func(r EdgeResult, _ int) bool { return !r.Match() })
	for _, r := range failed {
		c.logger.Warn("edge mismatch",
			zap.String("function", name),
			zap.String("uri", r.URI),
			zap.String("want", r.Want),
			zap.String("got", r.Got),
			zap.String("error", r.Error),
		)
	}
	c.logger.Info("edge function tested",
		zap.String("function", name),
		zap.String("stage", stage),
		zap.Int("runs", len(results)),
		zap.Int("mismatches", len(failed)),
	)

	if len(failed) > 0 {
		return results, fmt.Errorf("%w: %s failed %d of %d runs", ErrEdgeMismatch, name, len(failed), len(results))
	}
	return results, nil
}

func (c *Checker) testOne(ctx context.Context, name, stage, etag, eventType, uri string) (EdgeResult, error) {
	var (
		event edge.Event
		want  string
	)
	if eventType == edge.EventViewerRequest {
		event = edge.NewRequestEvent(uri)
		want = edge.ViewerRequest(event.Request).URI
	} else {
		event = edge.NewResponseEvent(uri)
		want = edge.CacheControl(uri)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return EdgeResult{}, fmt.Errorf("encode event for %s: %w", uri, err)
	}

	out, err := c.functions.TestFunctionWithContext(ctx, &cloudfront.TestFunctionInput{
		Name:        aws.String(name),
		Stage:       aws.String(stage),
		IfMatch:     aws.String(etag),
		EventObject: payload,
	})
	if err != nil {
		return EdgeResult{}, fmt.Errorf("test function %s with %s: %w", name, uri, err)
	}

	res := EdgeResult{URI: uri, Want: want}
	if out.TestResult == nil {
		res.Error = "empty test result"
		return res, nil
	}
	if msg := aws.StringValue(out.TestResult.FunctionErrorMessage); msg != "" {
		res.Error = msg
		return res, nil
	}

	var decoded functionOutput
	if err := json.Unmarshal([]byte(aws.StringValue(out.TestResult.FunctionOutput)), &decoded); err != nil {
		res.Error = fmt.Sprintf("decode function output: %v", err)
		return res, nil
	}

	switch {
	case eventType == edge.EventViewerRequest && decoded.Request != nil:
		res.Got = decoded.Request.URI
	case eventType == edge.EventViewerResponse && decoded.Response != nil:
		res.Got = decoded.Response.Headers[edge.CacheControlHeader].Value
	default:
		res.Error = "function returned no " + eventType + " object"
	}
	return res, nil
}
