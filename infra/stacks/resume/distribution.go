package resume

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type WebsiteDistributionProps struct {
	Bucket            awss3.Bucket
	Referer           string
	DomainName        string
	Certificate       awscertificatemanager.ICertificate
	DefaultRootObject string
	// Functions are attached to the default behavior.
	Functions []*awscloudfront.FunctionAssociation
}

// NewWebsiteDistribution fronts an S3 website endpoint, authenticating to it
// with the Referer header.
func NewWebsiteDistribution(scope constructs.Construct, id string, props *WebsiteDistributionProps) awscloudfront.Distribution {
	origin := awscloudfrontorigins.NewHttpOrigin(props.Bucket.BucketWebsiteDomainName(), &awscloudfrontorigins.HttpOriginProps{
		ProtocolPolicy: awscloudfront.OriginProtocolPolicy_HTTP_ONLY,
		CustomHeaders: &map[string]*string{
			"Referer": jsii.String(props.Referer),
		},
	})

	behavior := &awscloudfront.BehaviorOptions{
		Origin:               origin,
		AllowedMethods:       awscloudfront.AllowedMethods_ALLOW_GET_HEAD(),
		CachedMethods:        awscloudfront.CachedMethods_CACHE_GET_HEAD(),
		Compress:             jsii.Bool(true),
		ViewerProtocolPolicy: awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
	}
	if len(props.Functions) > 0 {
		behavior.FunctionAssociations = &props.Functions
	}

	return awscloudfront.NewDistribution(scope, jsii.String(id), &awscloudfront.DistributionProps{
		DefaultBehavior:        behavior,
		DomainNames:            jsii.Strings(props.DomainName),
		Certificate:            props.Certificate,
		DefaultRootObject:      jsii.String(props.DefaultRootObject),
		PriceClass:             awscloudfront.PriceClass_PRICE_CLASS_100,
		MinimumProtocolVersion: awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2021,
		SslSupportMethod:       awscloudfront.SSLMethod_SNI,
		HttpVersion:            awscloudfront.HttpVersion_HTTP2,
		EnableIpv6:             jsii.Bool(true),
	})
}
