package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/acm"
	"github.com/aws/aws-sdk-go/service/cloudfront"
	"github.com/aws/aws-sdk-go/service/ssm"
	"go.uber.org/zap"

	"github.com/ryands17/cloud-resume/internal/edge"
	"github.com/ryands17/cloud-resume/internal/logging"
	"github.com/ryands17/cloud-resume/internal/siteops"
)

func main() {
	app := kingpin.New("siteops", "Operational checks for the deployed site")
	region := app.Flag("region", "Region holding the certificate and its parameter").Default(siteops.DefaultRegion).Envar("CERT_REGION").String()
	profile := app.Flag("profile", "Shared config profile").Envar("AWS_PROFILE").String()

	certCmd := app.Command("cert", "Report days until the site certificate expires")
	paramPath := certCmd.Flag("parameter", "SSM parameter holding the certificate ARN").Default(siteops.DefaultParameterPath).String()

	edgeCmd := app.Command("edge", "Run deployed CloudFront Functions against the reference rules")
	fnName := edgeCmd.Arg("function", "CloudFront Function name").Required().String()
	eventType := edgeCmd.Flag("event", "Event type the function handles").Default(edge.EventViewerRequest).
		Enum(edge.EventViewerRequest, edge.EventViewerResponse)
	stage := edgeCmd.Flag("stage", "Function stage").Default(cloudfront.FunctionStageLive).
		Enum(cloudfront.FunctionStageLive, cloudfront.FunctionStageDevelopment)
	uris := edgeCmd.Flag("uri", "URI to test, repeatable").Strings()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(*region)},
		Profile:           *profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		logger.Fatal("failed to create AWS session", zap.Error(err))
	}

	checker := siteops.NewChecker(ssm.New(sess), acm.New(sess), cloudfront.New(sess), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case certCmd.FullCommand():
		err = runCert(ctx, os.Stdout, checker, *paramPath)
	case edgeCmd.FullCommand():
		samples := *uris
		if len(samples) == 0 {
			samples = siteops.SampleURIs
		}
		err = runEdge(ctx, os.Stdout, checker, *fnName, *stage, *eventType, samples)
	}
	if err != nil {
		logger.Error("check failed", zap.String("command", command), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func runCert(ctx context.Context, w io.Writer, checker *siteops.Checker, parameterPath string) error {
	status, err := checker.CheckCertificate(ctx, parameterPath)
	if status.Arn != "" {
		fmt.Fprintf(w, "%s\t%s\t%s\texpires %s\t%d days left\n",
			status.Domain, status.Status, status.Arn, status.NotAfter.Format("2006-01-02"), status.DaysLeft)
	}
	return err
}

func runEdge(ctx context.Context, w io.Writer, checker *siteops.Checker, name, stage, eventType string, uris []string) error {
	results, err := checker.TestEdgeFunction(ctx, name, stage, eventType, uris)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URI\tWANT\tGOT\tOK")
	for _, r := range results {
		got := r.Got
		if r.Error != "" {
			got = "error: " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", r.URI, r.Want, got, r.Match())
	}
	if flushErr := tw.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}
