package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/trace"
)

// Info records an informational event, both as a log record and as an event
// on the current span.
func (r *Recorder) Info(
	ctx context.Context,
	event, message string,
	attrs ...Attr,
) {
	r.emit(ctx, log.SeverityInfo, event, message, attrs)
}

// Error records an error event, both as a log record and as an event on the
// current span.
//
// The current span's status is set to [codes.Error] and the "errors" metric is
// incremented, regardless of whether error logging is enabled.
func (r *Recorder) Error(
	ctx context.Context,
	event string,
	err error,
	attrs ...Attr,
) {
	r.errorCount(ctx, 1)

	span := trace.SpanFromContext(ctx)
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)

	r.emit(
		ctx,
		log.SeverityError,
		event,
		err.Error(),
		append(attrs, Type("error.type", err)),
	)
}

func (r *Recorder) emit(
	ctx context.Context,
	severity log.Severity,
	event, message string,
	attrs []Attr,
) {
	trace.SpanFromContext(ctx).AddEvent(
		event,
		trace.WithAttributes(attribute.String("message", message)),
		trace.WithAttributes(asAttrKeyValues(attrs)...),
	)

	if !r.logger.Enabled(ctx, log.EnabledParameters{Severity: severity}) {
		return
	}

	var rec log.Record
	rec.SetEventName(event)
	rec.SetSeverity(severity)
	rec.SetBody(log.StringValue(message))

	if len(attrs) != 0 {
		rec.AddAttributes(asLogKeyValues(attrs)...)
	}

	r.logger.Emit(ctx, rec)
}
