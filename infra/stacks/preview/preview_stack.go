package preview

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3assets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/ryands17/cloud-resume/infra/lib"
)

type PreviewStackProps struct {
	awscdk.StackProps
	Environment lib.Environment
	// AssetPath is the zip holding the bootstrap binary and the built site.
	AssetPath string
}

type PreviewStack struct {
	awscdk.Stack
	Function awslambda.Function
	Api      awsapigateway.LambdaRestApi
}

// NewPreviewStack runs the preview server as a Lambda behind API Gateway so
// pull requests get a browsable build without touching the production
// distribution.
func NewPreviewStack(scope constructs.Construct, id string, props *PreviewStackProps) *PreviewStack {
	var sprops awscdk.StackProps
	if props != nil {
		sprops = props.StackProps
	}
	stack := awscdk.NewStack(scope, &id, &sprops)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("PreviewFn"), &awslambda.FunctionProps{
		Code:         awslambda.Code_FromAsset(jsii.String(props.AssetPath), &awss3assets.AssetOptions{}),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(30)),
		MemorySize:   jsii.Number(256),
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"), // Must be "bootstrap" for provided.al2023
		FunctionName: jsii.String(props.Environment.GetStackName("Preview")),
		Environment: &map[string]*string{
			"SITE_DIR": jsii.String("site"),
		},
		LogRetention: awslogs.RetentionDays_ONE_WEEK,
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("PreviewEndpoint"), &awsapigateway.LambdaRestApiProps{
		Handler:          lambdaFn,
		RestApiName:      jsii.String(props.Environment.GetStackName("PreviewApi")),
		BinaryMediaTypes: jsii.Strings("*/*"),
		DeployOptions: &awsapigateway.StageOptions{
			StageName:      jsii.String("preview"),
			MetricsEnabled: jsii.Bool(true),
		},
	})

	awscdk.NewCfnOutput(stack, jsii.String("PreviewApiUrl"), &awscdk.CfnOutputProps{
		Value: api.Url(),
	})

	return &PreviewStack{
		Stack:    stack,
		Function: lambdaFn,
		Api:      api,
	}
}
