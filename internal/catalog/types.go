// Package catalog models request templates and loads them from JSON or YAML files.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a FieldValue holds.
type Kind int

const (
	KindUnsupported Kind = iota
	KindString
	KindInteger
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "unsupported"
	}
}

// FieldValue is a closed union of the example value kinds a template field may carry.
// Unsupported values keep the raw decoded value so they can still be replayed verbatim.
type FieldValue struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	raw  interface{}
}

func StringValue(s string) FieldValue { return FieldValue{kind: KindString, str: s} }
func IntegerValue(i int64) FieldValue { return FieldValue{kind: KindInteger, num: i} }
func FloatValue(f float64) FieldValue { return FieldValue{kind: KindFloat, flt: f} }
func UnsupportedValue(raw interface{}) FieldValue {
	return FieldValue{kind: KindUnsupported, raw: raw}
}

// FromValue classifies a decoded JSON/YAML value.
func FromValue(v interface{}) FieldValue {
	switch t := v.(type) {
	case string:
		return StringValue(t)
	case int:
		return IntegerValue(int64(t))
	case int64:
		return IntegerValue(t)
	case uint64:
		if t > 1<<63-1 {
			return FloatValue(float64(t))
		}
		return IntegerValue(int64(t))
	case float64:
		return FloatValue(t)
	case float32:
		return FloatValue(float64(t))
	default:
		return UnsupportedValue(v)
	}
}

func (v FieldValue) Kind() Kind { return v.kind }

// Str returns the string payload; only meaningful for KindString.
func (v FieldValue) Str() string { return v.str }

// Int returns the integer payload; only meaningful for KindInteger.
func (v FieldValue) Int() int64 { return v.num }

// Float returns the float payload; only meaningful for KindFloat.
func (v FieldValue) Float() float64 { return v.flt }

// Interface returns the value in a form suitable for encoding/json.
func (v FieldValue) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	default:
		return v.raw
	}
}

// Format renders the value for use in a query string or a plain-text body.
func (v FieldValue) Format() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	default:
		if v.raw == nil {
			return ""
		}
		return fmt.Sprint(v.raw)
	}
}

// Fields maps a body or query field name to its value.
type Fields map[string]FieldValue

// Interface converts the fields into a map that encoding/json can marshal.
func (f Fields) Interface() map[string]interface{} {
	out := make(map[string]interface{}, len(f))
	for k, v := range f {
		out[k] = v.Interface()
	}
	return out
}

// Keys returns field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Text renders the fields as newline separated key=value pairs in key order.
func (f Fields) Text() string {
	var sb strings.Builder
	for i, k := range f.Keys() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(f[k].Format())
	}
	return sb.String()
}

// RequestTemplate describes one kind of request replayed every cycle.
type RequestTemplate struct {
	Name    string
	Method  string
	URL     string
	Headers map[string]string
	// Body is nil when the template declares no body at all.
	Body   Fields
	Params Fields
}

// DisplayName returns Name, or "METHOD url" when no name was given.
func (t RequestTemplate) DisplayName() string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	target := strings.TrimSpace(t.URL)
	switch {
	case method == "" && target == "":
		return "<unnamed>"
	case method == "":
		return target
	case target == "":
		return method
	}
	return method + " " + target
}
