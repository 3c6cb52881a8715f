package resume

import (
	"fmt"
	"path/filepath"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/ryands17/cloud-resume/infra/lib"
	"github.com/ryands17/cloud-resume/infra/lib/cdklogger"
	"github.com/ryands17/cloud-resume/infra/lib/certlookup"
	"github.com/ryands17/cloud-resume/internal/edge"
)

// DefaultSiteDir is where `next export` writes the resume.
const DefaultSiteDir = "packages/resume/out"

type ResumeStackProps struct {
	awscdk.StackProps
	Environment  lib.Environment
	DomainConfig *lib.DomainConfig
	// Referer is shared between the distributions and the bucket policies.
	Referer string
	SiteDir string
}

type ResumeStack struct {
	awscdk.Stack
	Site              *WebsiteBucket
	SiteCDN           awscloudfront.Distribution
	Redirect          *WebsiteBucket
	RedirectCDN       awscloudfront.Distribution
	ApplyCacheHeaders awscloudfront.Function
}

// NewResumeStack serves the exported resume from an S3 website bucket on the
// apex domain and redirects www to it.
func NewResumeStack(scope constructs.Construct, id string, props *ResumeStackProps) *ResumeStack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)
	awscdk.Tags_Of(stack).Add(jsii.String("x:stack"), jsii.String("resume"), nil)

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
	if props.Referer == "" {
		cdklogger.LogError(stack, id, "a referer secret is required to protect the website buckets")
	}

	certificate := certlookup.NewCertLookup(stack, "CertLookup", &certlookup.CertLookupProps{
		DomainConfig: domainConfig,
	}).Certificate

	code, err := edge.ViewerResponseCode()
	if err != nil {
		panic(fmt.Errorf("rendering cache headers function: %w", err))
	}
	applyCacheHeaders := awscloudfront.NewFunction(stack, jsii.String("applyCacheHeaders"), &awscloudfront.FunctionProps{
		Code:         awscloudfront.FunctionCode_FromInline(jsii.String(code)),
		Comment:      jsii.String("Sets Cache-Control for static assets and pages"),
		FunctionName: jsii.String(props.Environment.GetStackName("ApplyCacheHeaders")),
		Runtime:      awscloudfront.FunctionRuntime_JS_2_0(),
	})

	// Apex: serves the site
	site := NewWebsiteBucket(stack, "portfolio", &WebsiteBucketProps{
		Referer: props.Referer,
	})
	siteCDN := NewWebsiteDistribution(stack, "portfolioCDN", &WebsiteDistributionProps{
		Bucket:            site.Bucket,
		Referer:           props.Referer,
		DomainName:        domainConfig.Apex,
		Certificate:       certificate,
		DefaultRootObject: "",
		Functions: []*awscloudfront.FunctionAssociation{
			{
				Function:  applyCacheHeaders,
				EventType: awscloudfront.FunctionEventType_VIEWER_RESPONSE,
			},
		},
	})

	awss3deployment.NewBucketDeployment(stack, jsii.String("deployPortfolio"), &awss3deployment.BucketDeploymentProps{
		Sources:           &[]awss3deployment.ISource{awss3deployment.Source_Asset(jsii.String(siteDir), nil)},
		DestinationBucket: site.Bucket,
		Distribution:      siteCDN,
		DistributionPaths: jsii.Strings("/*"),
	})

	// www: redirects to the apex
	redirect := NewWebsiteBucket(stack, "portfolioWww", &WebsiteBucketProps{
		BucketName: domainConfig.Www,
		Referer:    props.Referer,
		RedirectTo: domainConfig.Apex,
	})
	redirectCDN := NewWebsiteDistribution(stack, "portfolioWwwCDN", &WebsiteDistributionProps{
		Bucket:            redirect.Bucket,
		Referer:           props.Referer,
		DomainName:        domainConfig.Www,
		Certificate:       certificate,
		DefaultRootObject: "index.html",
	})

	awscdk.NewCfnOutput(stack, jsii.String("url"), &awscdk.CfnOutputProps{
		Value: jsii.String(domainConfig.SiteURL()),
	})
	awscdk.NewCfnOutput(stack, jsii.String("apexDistributionDomain"), &awscdk.CfnOutputProps{
		Value: siteCDN.DistributionDomainName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("wwwDistributionDomain"), &awscdk.CfnOutputProps{
		Value: redirectCDN.DistributionDomainName(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("cacheHeadersFunction"), &awscdk.CfnOutputProps{
		Value: applyCacheHeaders.FunctionName(),
	})

	return &ResumeStack{
		Stack:             stack,
		Site:              site,
		SiteCDN:           siteCDN,
		Redirect:          redirect,
		RedirectCDN:       redirectCDN,
		ApplyCacheHeaders: applyCacheHeaders,
	}
}
