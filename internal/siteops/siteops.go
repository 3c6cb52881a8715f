// Package siteops checks deployed site infrastructure: the certificate
// behind the distributions and the CloudFront Functions running at the edge.
package siteops

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"
)

const (
	// ExpiryThresholdDays matches the certificate expiry alarm.
	ExpiryThresholdDays = 45

	// DefaultRegion holds the CloudFront certificate and its parameter.
	DefaultRegion        = "us-east-1"
	DefaultParameterPath = "/portfolio/acmCertArn"
)

var (
	ErrCertificateExpiring = errors.New("certificate expiring")
	ErrEdgeMismatch        = errors.New("edge function output differs from reference")
)

// ParameterAPI is the part of the SSM client the checker uses.
type ParameterAPI interface {
	GetParameterWithContext(aws.Context, *ssm.GetParameterInput, ...request.Option) (*ssm.GetParameterOutput, error)
}

// CertificateAPI is the part of the ACM client the checker uses.
type CertificateAPI interface {
	DescribeCertificateWithContext(aws.Context, *acm.DescribeCertificateInput, ...request.Option) (*acm.DescribeCertificateOutput, error)
}

// FunctionAPI is the part of the CloudFront client the checker uses.
type FunctionAPI interface {
	DescribeFunctionWithContext(aws.Context, *cloudfront.DescribeFunctionInput, ...request.Option) (*cloudfront.DescribeFunctionOutput, error)
	TestFunctionWithContext(aws.Context, *cloudfront.TestFunctionInput, ...request.Option) (*cloudfront.TestFunctionOutput, error)
}

// Checker runs read-only checks against AWS.
type Checker struct {
	params    ParameterAPI
	certs     CertificateAPI
	functions FunctionAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewChecker builds a Checker. Any client may be nil if the matching check is not used.
func NewChecker(params ParameterAPI, certs CertificateAPI, functions FunctionAPI, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		params:    params,
		certs:     certs,
		functions: functions,
		logger:    logger,
		now:       time.Now,
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 30*time.Second)
}
