// Package certlookup reads the certificate ARN published by the global stack.
//
// CloudFront needs a us-east-1 certificate while the site stacks live in
// another region, so the ARN is fetched from SSM at deploy time with an SDK
// call made by a custom resource rather than a cross-stack reference.
package certlookup

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/ryands17/cloud-resume/infra/lib"
	"github.com/ryands17/cloud-resume/infra/lib/cdklogger"
)

const ResourceType = "Custom::FetchCertArn"

type CertLookupProps struct {
	DomainConfig *lib.DomainConfig
}

type CertLookup struct {
	constructs.Construct
	Resource    customresources.AwsCustomResource
	Certificate awscertificatemanager.ICertificate
}

func NewCertLookup(scope constructs.Construct, id string, props *CertLookupProps) *CertLookup {
	construct := constructs.NewConstruct(scope, &id)

	domainConfig := props.DomainConfig
	if domainConfig == nil {
		domainConfig = lib.DefaultDomainConfig()
	}
	path := domainConfig.AcmArnPath

	fetchCertArn := customresources.NewAwsCustomResource(construct, jsii.String("fetchCertArn"), &customresources.AwsCustomResourceProps{
		ResourceType: jsii.String(ResourceType),
		OnUpdate: &customresources.AwsSdkCall{
			Service: jsii.String("SSM"),
			Action:  jsii.String("getParameter"),
			Region:  jsii.String(domainConfig.CertRegion),
			Parameters: map[string]interface{}{
				"Name": path,
			},
			PhysicalResourceId: customresources.PhysicalResourceId_Of(jsii.String("cert" + path)),
		},
		Policy: customresources.AwsCustomResourcePolicy_FromSdkCalls(&customresources.SdkCallsPolicyOptions{
			Resources: jsii.Strings(domainConfig.CertParameterArn()),
		}),
		LogRetention: awslogs.RetentionDays_ONE_DAY,
	})

	cert := awscertificatemanager.Certificate_FromCertificateArn(construct, jsii.String("cert"),
		fetchCertArn.GetResponseField(jsii.String("Parameter.Value")))

	cdklogger.LogInfo(construct, id, "Certificate ARN read from ssm:%s in %s", path, domainConfig.CertRegion)

	return &CertLookup{
		Construct:   construct,
		Resource:    fetchCertArn,
		Certificate: cert,
	}
}

// CertificateArn returns the token resolving to the certificate ARN at deploy time.
func (c *CertLookup) CertificateArn() *string {
	return c.Certificate.CertificateArn()
}
