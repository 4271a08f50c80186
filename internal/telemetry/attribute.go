package telemetry

import (
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log"
	"golang.org/x/exp/constraints"
)

// Attr is a telemetry attribute that can be attached to spans, metrics and log
// records.
//
// The zero value is an empty attribute that is omitted wherever it is used.
type Attr struct {
	kv attribute.KeyValue
}

// String returns a string attribute.
func String[T ~string](k string, v T) Attr {
	return Attr{attribute.String(k, string(v))}
}

// Stringer returns a string attribute. The value is the result of calling
// v.String().
func Stringer(k string, v fmt.Stringer) Attr {
	return String(k, v.String())
}

// Type returns a string attribute set to the name of v's type, with any
// pointer indirection removed.
func Type[T any](k string, v T) Attr {
	t := reflect.TypeOf(v)
	if t == nil {
		return String(k, "<nil>")
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return String(k, t.String())
}

// Bool returns a boolean attribute.
func Bool[T ~bool](k string, v T) Attr {
	return Attr{attribute.Bool(k, bool(v))}
}

// Int returns an int64 attribute.
func Int[T constraints.Integer](k string, v T) Attr {
	return Attr{attribute.Int64(k, int64(v))}
}

// Float returns a float64 attribute.
func Float[T constraints.Float](k string, v T) Attr {
	return Attr{attribute.Float64(k, float64(v))}
}

// If conditionally includes an attribute.
func If(cond bool, attr Attr) Attr {
	if cond {
		return attr
	}
	return Attr{}
}

func (a Attr) isEmpty() bool {
	return a.kv.Key == ""
}

// asLogKeyValue converts a to its log representation.
func (a Attr) asLogKeyValue() log.KeyValue {
	k := string(a.kv.Key)

	switch a.kv.Value.Type() {
	case attribute.BOOL:
		return log.Bool(k, a.kv.Value.AsBool())
	case attribute.INT64:
		return log.Int64(k, a.kv.Value.AsInt64())
	case attribute.FLOAT64:
		return log.Float64(k, a.kv.Value.AsFloat64())
	default:
		return log.String(k, a.kv.Value.Emit())
	}
}

func asAttrKeyValues(attrs []Attr) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))

	for _, attr := range attrs {
		if !attr.isEmpty() {
			kvs = append(kvs, attr.kv)
		}
	}

	return kvs
}

func asLogKeyValues(attrs []Attr) []log.KeyValue {
	kvs := make([]log.KeyValue, 0, len(attrs))

	for _, attr := range attrs {
		if !attr.isEmpty() {
			kvs = append(kvs, attr.asLogKeyValue())
		}
	}

	return kvs
}
