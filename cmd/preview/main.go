package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryands17/cloud-resume/internal/logging"
	"github.com/ryands17/cloud-resume/internal/preview"
)

var signalNotify = signal.Notify

func main() {
	app := kingpin.New("preview", "Serve a built site with the production edge rules")
	listen := app.Flag("listen", "Address to listen on").Default(":8080").Envar("PREVIEW_LISTEN").String()
	siteDir := app.Flag("site-dir", "Directory holding the built site").Default("dist").Envar("SITE_DIR").String()
	logRequests := app.Flag("log-requests", "Log every request").Envar("PREVIEW_LOG_REQUESTS").Bool()
	logLevel := app.Flag("log-level", "Minimum log level").Default("info").Envar("LOG_LEVEL").String()
	grace := app.Flag("shutdown-timeout", "Grace period for in-flight requests").Default("10s").Duration()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to parse log level: %v", err))
	}
	logger, err := logging.NewWithLevel(level)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	router := preview.NewRouter(*siteDir, logger, preview.WithRequestLogging(*logRequests))

	if name := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); name != "" {
		logger.Info("cold start", zap.String("function", name), zap.String("site_dir", *siteDir))
		lambda.Start(lambdaHandler(router))
		return
	}

	server := &http.Server{
		Addr:              *listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("site_dir", *siteDir))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdown(server, *grace, logger)
}

// lambdaHandler adapts the router to API Gateway REST proxy events.
func lambdaHandler(router *gin.Engine) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	adapter := ginadapter.New(router)
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	}
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
