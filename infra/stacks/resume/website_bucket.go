package resume

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type WebsiteBucketProps struct {
	// BucketName is optional; redirect buckets must be named after their host.
	BucketName string
	// Referer is the secret CloudFront sends to the website endpoint.
	Referer string
	// RedirectTo turns the bucket into a redirect to this host over https.
	RedirectTo string
}

// WebsiteBucket is an S3 website bucket readable only with the CloudFront referer.
type WebsiteBucket struct {
	Bucket awss3.Bucket
}

func NewWebsiteBucket(scope constructs.Construct, id string, props *WebsiteBucketProps) *WebsiteBucket {
	bucketProps := &awss3.BucketProps{
		RemovalPolicy: awscdk.RemovalPolicy_RETAIN,
		// The website endpoint needs a public policy; ACLs stay blocked.
		BlockPublicAccess: awss3.NewBlockPublicAccess(&awss3.BlockPublicAccessOptions{
			BlockPublicAcls:       jsii.Bool(true),
			IgnorePublicAcls:      jsii.Bool(true),
			BlockPublicPolicy:     jsii.Bool(false),
			RestrictPublicBuckets: jsii.Bool(false),
		}),
	}
	if props.BucketName != "" {
		bucketProps.BucketName = jsii.String(props.BucketName)
	}
	if props.RedirectTo != "" {
		bucketProps.WebsiteRedirect = &awss3.RedirectTarget{
			HostName: jsii.String(props.RedirectTo),
			Protocol: awss3.RedirectProtocol_HTTPS,
		}
	} else {
		bucketProps.WebsiteIndexDocument = jsii.String("index.html")
		bucketProps.WebsiteErrorDocument = jsii.String("404.html")
	}

	bucket := awss3.NewBucket(scope, jsii.String(id), bucketProps)

	objects := jsii.Strings(*bucket.ArnForObjects(jsii.String("*")))
	referer := map[string]interface{}{"aws:Referer": props.Referer}

	bucket.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Actions:    jsii.Strings("s3:GetObject"),
		Resources:  objects,
		Conditions: &map[string]interface{}{"StringLike": referer},
		Principals: &[]awsiam.IPrincipal{awsiam.NewStarPrincipal()},
	}))

	bucket.AddToResourcePolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:     awsiam.Effect_DENY,
		Actions:    jsii.Strings("s3:GetObject"),
		Resources:  objects,
		Conditions: &map[string]interface{}{"StringNotLike": referer},
		Principals: &[]awsiam.IPrincipal{awsiam.NewStarPrincipal()},
	}))

	return &WebsiteBucket{Bucket: bucket}
}
