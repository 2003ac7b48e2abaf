package utils

import (
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	. "github.com/strandhq/strand/utils/flag"
	Logger "github.com/strandhq/strand/utils/log"
)

// InitTracer starts the Datadog tracer.
func InitTracer() {
	env := "development"
	if IsProdEnv() {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
