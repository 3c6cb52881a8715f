package blog

import (
	"fmt"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/ryands17/cloud-resume/infra/lib"
	"github.com/ryands17/cloud-resume/infra/lib/cdklogger"
	"github.com/ryands17/cloud-resume/infra/lib/certlookup"
	"github.com/ryands17/cloud-resume/internal/edge"
)

// DefaultSiteDir is the static build output of the blog.
const DefaultSiteDir = "dist"

type BlogStackProps struct {
	awscdk.StackProps
	Environment  lib.Environment
	DomainConfig *lib.DomainConfig
	SiteDir      string
}

type BlogStack struct {
	awscdk.Stack
	Bucket       awss3.Bucket
	Distribution awscloudfront.Distribution
	FixSubPages  awscloudfront.Function
}

// NewBlogStack serves the pre-rendered blog from a private bucket behind
// CloudFront on the apex and www names.
func NewBlogStack(scope constructs.Construct, id string, props *BlogStackProps) *BlogStack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)
	awscdk.Tags_Of(stack).Add(jsii.String("x:stack"), jsii.String("blog"), nil)

	domainConfig := props.DomainConfig
	if domainConfig == nil {
		domainConfig = lib.DefaultDomainConfig()
	}
	siteDir := props.SiteDir
	if siteDir == "" {
		siteDir = DefaultSiteDir
		cdklogger.LogWarning(stack, id, "SITE_DIR not set, deploying %s", siteDir)
	}
	// Relative paths resolve against this process, not the jsii kernel.
	if abs, err := filepath.Abs(siteDir); err == nil {
		siteDir = abs
	}

	code, err := edge.ViewerRequestCode()
	if err != nil {
		panic(fmt.Errorf("rendering sub pages function: %w", err))
	}
	fixSubPages := awscloudfront.NewFunction(stack, jsii.String("fixSubPages"), &awscloudfront.FunctionProps{
		Code:         awscloudfront.FunctionCode_FromInline(jsii.String(code)),
		Comment:      jsii.String("To redirect to the correct page"),
		FunctionName: jsii.String(props.Environment.GetStackName("FixSubPages")),
		Runtime:      awscloudfront.FunctionRuntime_JS_2_0(),
	})

	certificate := certlookup.NewCertLookup(stack, "CertLookup", &certlookup.CertLookupProps{
		DomainConfig: domainConfig,
	}).Certificate

	bucket := awss3.NewBucket(stack, jsii.String("site"), &awss3.BucketProps{
		BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
		Encryption:        awss3.BucketEncryption_S3_MANAGED,
		EnforceSSL:        jsii.Bool(true),
		RemovalPolicy:     awscdk.RemovalPolicy_RETAIN,
	})

	domainNames := append([]string{domainConfig.Apex}, domainConfig.AlternateNames()...)

	distribution := awscloudfront.NewDistribution(stack, jsii.String("siteCDN"), &awscloudfront.DistributionProps{
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:               awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(bucket, nil),
			ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_GET_HEAD_OPTIONS(),
			CachePolicy:          awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
			Compress:             jsii.Bool(true),
			FunctionAssociations: &[]*awscloudfront.FunctionAssociation{
				{
					Function:  fixSubPages,
					EventType: awscloudfront.FunctionEventType_VIEWER_REQUEST,
				},
			},
		},
		DomainNames:            jsii.Strings(domainNames...),
		Certificate:            certificate,
		DefaultRootObject:      jsii.String(edge.IndexDocument),
		ErrorResponses:         errorResponses(),
		MinimumProtocolVersion: awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2021,
		HttpVersion:            awscloudfront.HttpVersion_HTTP2_AND_3,
		EnableIpv6:             jsii.Bool(true),
	})

	awss3deployment.NewBucketDeployment(stack, jsii.String("deploySite"), &awss3deployment.BucketDeploymentProps{
		Sources:           &[]awss3deployment.ISource{awss3deployment.Source_Asset(jsii.String(siteDir), nil)},
		DestinationBucket: bucket,
		Distribution:      distribution,
		DistributionPaths: jsii.Strings("/*"),
		Prune:             jsii.Bool(true),
	})

	awscdk.NewCfnOutput(stack, jsii.String("url"), &awscdk.CfnOutputProps{
		Value: jsii.String(domainConfig.SiteURL()),
	})
	awscdk.NewCfnOutput(stack, jsii.String("distributionDomain"), &awscdk.CfnOutputProps{
		Value: distribution.DistributionDomainName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("subPagesFunction"), &awscdk.CfnOutputProps{
		Value: fixSubPages.FunctionName(),
	})

	return &BlogStack{
		Stack:        stack,
		Bucket:       bucket,
		Distribution: distribution,
		FixSubPages:  fixSubPages,
	}
}

// errorResponses maps missing objects onto the site's 404 page. A private
// bucket answers 403 for keys that do not exist.
func errorResponses() *[]*awscloudfront.ErrorResponse {
	responses := lo.Map([]float64{403, 404}, func(status float64, _ int) *awscloudfront.ErrorResponse {
		return &awscloudfront.ErrorResponse{
			HttpStatus:         jsii.Number(status),
			ResponseHttpStatus: jsii.Number(404),
			ResponsePagePath:   jsii.String("/404.html"),
			Ttl:                awscdk.Duration_Minutes(jsii.Number(5)),
		}
	})
	return &responses
}
