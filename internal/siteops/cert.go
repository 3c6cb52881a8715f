package siteops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"
)

// CertStatus describes the certificate referenced by the SSM parameter.
type CertStatus struct {
	Arn      string
	Domain   string
	Status   string
	NotAfter time.Time
	DaysLeft int
}

// CertificateArn reads the certificate ARN stored at parameterPath.
func (c *Checker) CertificateArn(ctx context.Context, parameterPath string) (string, error) {
	if c.params == nil {
		return "", errors.New("no SSM client configured")
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	out, err := c.params.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name: aws.String(parameterPath),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", parameterPath, err)
	}
	if out.Parameter == nil || aws.StringValue(out.Parameter.Value) == "" {
		return "", fmt.Errorf("parameter %s is empty", parameterPath)
	}
	return aws.StringValue(out.Parameter.Value), nil
}

// CheckCertificate resolves the certificate through SSM and reports how long
// it remains valid. It returns ErrCertificateExpiring, along with the status,
// when fewer than ExpiryThresholdDays remain.
func (c *Checker) CheckCertificate(ctx context.Context, parameterPath string) (CertStatus, error) {
	arn, err := c.CertificateArn(ctx, parameterPath)
	if err != nil {
		return CertStatus{}, err
	}
	if c.certs == nil {
		return CertStatus{}, errors.New("no ACM client configured")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	out, err := c.certs.DescribeCertificateWithContext(ctx, &acm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	})
	if err != nil {
		return CertStatus{}, fmt.Errorf("describe certificate %s: %w", arn, err)
	}
	detail := out.Certificate
	if detail == nil || detail.NotAfter == nil {
		return CertStatus{}, fmt.Errorf("certificate %s has no expiry date", arn)
	}

	status := CertStatus{
		Arn:      arn,
		Domain:   aws.StringValue(detail.DomainName),
		Status:   aws.StringValue(detail.Status),
		NotAfter: aws.TimeValue(detail.NotAfter),
	}
	status.DaysLeft = int(status.NotAfter.Sub(c.now()).Hours() / 24)

	c.logger.Info("certificate checked",
		zap.String("arn", status.Arn),
		zap.String("domain", status.Domain),
		zap.String("status", status.Status),
		zap.Time("not_after", status.NotAfter),
		zap.Int("days_left", status.DaysLeft),
	)

	if status.DaysLeft < ExpiryThresholdDays {
		return status, fmt.Errorf("%w: %s expires in %d days", ErrCertificateExpiring, status.Domain, status.DaysLeft)
	}
	return status, nil
}
