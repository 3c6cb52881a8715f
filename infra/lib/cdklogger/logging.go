// Package cdklogger reports synthesis diagnostics as construct annotations,
// which the CDK CLI prints during synth and deploy.
package cdklogger

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// format prefixes the message with constructID unless the scope path already ends with it.
func format(scope constructs.Construct, constructID string, msg string, args ...interface{}) *string {
	message := fmt.Sprintf(msg, args...)
	if constructID == "" {
		return jsii.String(message)
	}
	path := *scope.Node().Path()
	if strings.HasSuffix(path, "/"+constructID) || path == constructID {
		return jsii.String(message)
	}
	return jsii.String(fmt.Sprintf("[%s] %s", constructID, message))
}

// LogInfo adds an INFO annotation to scope.
func LogInfo(scope constructs.Construct, constructID string, msg string, args ...interface{}) {
	awscdk.Annotations_Of(scope).AddInfo(format(scope, constructID, msg, args...))
}

// LogWarning adds a WARNING annotation to scope.
func LogWarning(scope constructs.Construct, constructID string, msg string, args ...interface{}) {
	awscdk.Annotations_Of(scope).AddWarning(format(scope, constructID, msg, args...))
}

// LogError adds an ERROR annotation to scope; synthesis fails when any are present.
func LogError(scope constructs.Construct, constructID string, msg string, args ...interface{}) {
	awscdk.Annotations_Of(scope).AddError(format(scope, constructID, msg, args...))
}
