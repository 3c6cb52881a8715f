package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/samber/lo"

	"github.com/ryands17/cloud-resume/infra/config"
	"github.com/ryands17/cloud-resume/infra/lib"
	"github.com/ryands17/cloud-resume/infra/stacks/blog"
	"github.com/ryands17/cloud-resume/infra/stacks/global"
	"github.com/ryands17/cloud-resume/infra/stacks/preview"
	"github.com/ryands17/cloud-resume/infra/stacks/resume"
)

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	if err := build(app); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	app.Synth(nil)
}

// build adds every stack selected by the app context to app.
func build(app awscdk.App) error {
	environment := lib.GetEnvironmentFromContext(app)
	domainConfig := lib.GetDomainConfigFromContext(app)

	site, err := config.Site(app)
	if err != nil {
		return err
	}
	vars, err := config.ParseSiteEnvironmentVariables()
	if err != nil {
		return err
	}

	// Add environment tags to all resources
	tags := environment.Tags()
	keys := lo.Keys(tags)
	sort.Strings(keys)
	for _, k := range keys {
		awscdk.Tags_Of(app).Add(jsii.String(k), jsii.String(tags[k]), nil)
	}

	certStack := global.NewGlobalStack(app, environment.GetStackName("GlobalStack"), &global.GlobalStackProps{
		StackProps: awscdk.StackProps{
			Env:         env(lib.CertRegion),
			Description: jsii.String("Certificate for " + domainConfig.Apex + " and its SSM parameter"),
		},
		Environment:  environment,
		DomainConfig: domainConfig,
	})

	siteProps := awscdk.StackProps{
		Env: env(domainConfig.SiteRegion),
	}

	var siteStack awscdk.Stack
	switch site {
	case config.SiteResume:
		if err := vars.RequireReferer(); err != nil {
			return err
		}
		siteProps.Description = jsii.String("Exported resume on S3 website hosting behind CloudFront")
		siteStack = resume.NewResumeStack(app, environment.GetStackName("InfraStack"), &resume.ResumeStackProps{
			StackProps:   siteProps,
			Environment:  environment,
			DomainConfig: domainConfig,
			Referer:      vars.S3Referer,
			SiteDir:      vars.SiteDir,
		}).Stack
	default:
		siteProps.Description = jsii.String("Static blog on a private bucket behind CloudFront")
		siteStack = blog.NewBlogStack(app, environment.GetStackName("AstroStack"), &blog.BlogStackProps{
			StackProps:   siteProps,
			Environment:  environment,
			DomainConfig: domainConfig,
			SiteDir:      vars.SiteDir,
		}).Stack
	}
	// The certificate parameter must exist before the site reads it.
	siteStack.AddDependency(certStack.Stack, jsii.String("reads the certificate ARN from SSM"))

	if environment.IsPR || config.PreviewEnabled(app) {
		stack := preview.NewPreviewStack(app, environment.GetStackName("PreviewStack"), &preview.PreviewStackProps{
			StackProps:  awscdk.StackProps{Env: env(domainConfig.SiteRegion)},
			Environment: environment,
			AssetPath:   vars.PreviewAsset,
		})

		if environment.IsPR {
			awscdk.NewCfnOutput(stack.Stack, jsii.String("EnvironmentType"), &awscdk.CfnOutputProps{
				Value: jsii.String("PR"),
			})
			awscdk.NewCfnOutput(stack.Stack, jsii.String("PRNumber"), &awscdk.CfnOutputProps{
				Value: jsii.String(environment.PRNumber),
			})
		}
	}

	return nil
}

// env determines the AWS environment (account+region) in which a stack is to
// be deployed. CDK_DEPLOY_ACCOUNT takes precedence over the CLI's default account.
func env(region string) *awscdk.Environment {
	account := os.Getenv("CDK_DEPLOY_ACCOUNT")
	if account == "" {
		account = os.Getenv("CDK_DEFAULT_ACCOUNT")
	}
	if account == "" {
		return &awscdk.Environment{Region: jsii.String(region)}
	}
	return &awscdk.Environment{
		Account: jsii.String(account),
		Region:  jsii.String(region),
	}
}
