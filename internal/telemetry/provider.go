package telemetry

import (
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Provider is the set of OpenTelemetry providers used to instrument a working
// set registry.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider
}

// Recorder records the spans, metrics and log records of a single
// instrumented registry.
type Recorder struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger log.Logger

	errorCount              Instrument[int64]
	operationCount          Instrument[int64]
	operationsInFlightCount Instrument[int64]
}

// Recorder returns a new [Recorder] for the instrumentation scope named by
// scope, which is the path of the public package that performs the
// instrumentation.
//
// attrs identify the instrumented registry. They are attached to the scope
// rather than to each span, metric or log record.
func (p *Provider) Recorder(scope string, attrs ...Attr) *Recorder {
	version := moduleVersion()
	kvs := asAttrKeyValues(attrs)

	r := &Recorder{
		tracer: p.TracerProvider.Tracer(
			scope,
			trace.WithInstrumentationVersion(version),
			trace.WithInstrumentationAttributes(kvs...),
		),
		meter: p.MeterProvider.Meter(
			scope,
			metric.WithInstrumentationVersion(version),
			metric.WithInstrumentationAttributes(kvs...),
		),
		logger: p.LoggerProvider.Logger(
			scope,
			log.WithInstrumentationVersion(version),
			log.WithInstrumentationAttributes(kvs...),
		),
	}

	r.errorCount = r.Counter("errors", "{error}", "The number of registry operations that have failed.")
	r.operationCount = r.Counter("operations", "{operation}", "The number of registry operations that have been started.")
	r.operationsInFlightCount = r.UpDownCounter("operations.in_flight", "{operation}", "The number of registry operations that are currently in progress.")

	return r
}

const modulePath = "github.com/dogmatiq/workingsetkit"

// moduleVersion returns the version of this module within the running binary.
var moduleVersion = sync.OnceValue(func() string {
	info, _ := debug.ReadBuildInfo()
	return versionOf(info, modulePath)
})

// versionOf returns the version of the module at path within info, or
// "unknown" if it is not present.
func versionOf(info *debug.BuildInfo, path string) string {
	if info == nil {
		return "unknown"
	}

	if info.Main.Path == path && info.Main.Version != "" {
		return info.Main.Version
	}

	for _, dep := range info.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}

	return "unknown"
}
