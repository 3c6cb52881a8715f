package global

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsssm"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/ryands17/cloud-resume/infra/lib"
)

// ExpiryThresholdDays is the number of days before expiry at which the alarm fires.
const ExpiryThresholdDays = 45

type GlobalStackProps struct {
	awscdk.StackProps
	Environment  lib.Environment
	DomainConfig *lib.DomainConfig
}

type GlobalStack struct {
	awscdk.Stack
	Certificate  awscertificatemanager.Certificate
	CertArnParam awsssm.StringParameter
	ExpiryAlarm  awscloudwatch.Alarm
}

// NewGlobalStack issues the site certificate in us-east-1 and publishes its
// ARN to SSM, where the regional site stacks read it.
func NewGlobalStack(scope constructs.Construct, id string, props *GlobalStackProps) *GlobalStack {
	if props == nil {
		props = &GlobalStackProps{}
	}
	sprops := props.StackProps
	sprops.Env = certEnv(sprops.Env)
	stack := awscdk.NewStack(scope, &id, &sprops)

	domainConfig := props.DomainConfig
	if domainConfig == nil {
		domainConfig = lib.DefaultDomainConfig()
	}

	// ACM certificate for the domain
	cert := awscertificatemanager.NewCertificate(stack, jsii.String("personalDomain"), &awscertificatemanager.CertificateProps{
		DomainName:              jsii.String(domainConfig.Apex),
		SubjectAlternativeNames: jsii.Strings(domainConfig.WildcardDomain()),
		Validation:              awscertificatemanager.CertificateValidation_FromDns(nil),
	})

	alarm := cert.MetricDaysToExpiry(nil).CreateAlarm(stack, jsii.String("certExpiry"), &awscloudwatch.CreateAlarmOptions{
		AlarmDescription:  jsii.String("Certificate for " + domainConfig.Apex + " is close to expiry"),
		EvaluationPeriods: jsii.Number(1),
		Threshold:         jsii.Number(ExpiryThresholdDays),
		// Fires below the threshold, not at or above it.
		ComparisonOperator: awscloudwatch.ComparisonOperator_LESS_THAN_THRESHOLD,
		TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
	})

	certArn := awsssm.NewStringParameter(stack, jsii.String("certArnParameter"), &awsssm.StringParameterProps{
		ParameterName: jsii.String(domainConfig.AcmArnPath),
		StringValue:   cert.CertificateArn(),
	})

	awscdk.NewCfnOutput(stack, jsii.String("certArn"), &awscdk.CfnOutputProps{
		Value: certArn.StringValue(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("Username"), &awscdk.CfnOutputProps{
		Value: jsii.String(props.Environment.Username),
	})

	return &GlobalStack{
		Stack:        stack,
		Certificate:  cert,
		CertArnParam: certArn,
		ExpiryAlarm:  alarm,
	}
}

// certEnv pins env to the certificate region, keeping the account.
func certEnv(env *awscdk.Environment) *awscdk.Environment {
	pinned := &awscdk.Environment{Region: jsii.String(lib.CertRegion)}
	if env != nil {
		pinned.Account = env.Account
	}
	return pinned
}
