package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the catalog file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrEmptyCatalog is returned when a catalog file holds no templates.
var ErrEmptyCatalog = errors.New("catalog contains no templates")

// FormatForPath picks a format from the file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads a catalog file containing an array of request templates.
func Load(path string) ([]RequestTemplate, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog file %q is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	templates, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return templates, nil
}

// Parse decodes catalog bytes in the given format.
func Parse(data []byte, format Format) ([]RequestTemplate, error) {
	var items []interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	}

	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	templates := make([]RequestTemplate, 0, len(items))
	for idx, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("index %d: expected object, got %T", idx, item)
		}
		tmpl, err := buildTemplate(entry)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", idx, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func buildTemplate(entry map[string]interface{}) (RequestTemplate, error) {
	var tmpl RequestTemplate
	for key, raw := range entry {
		switch strings.ToLower(key) {
		case "name":
			tmpl.Name = scalarString(raw)
		case "method":
			tmpl.Method = scalarString(raw)
		case "url":
			tmpl.URL = scalarString(raw)
		case "headers":
			headers, err := toHeaderMap(raw)
			if err != nil {
				return RequestTemplate{}, fmt.Errorf("headers: %w", err)
			}
			tmpl.Headers = headers
		case "body":
			body, err := toFields(raw)
			if err != nil {
				return RequestTemplate{}, fmt.Errorf("body: %w", err)
			}
			tmpl.Body = body
		case "params":
			params, err := toFields(raw)
			if err != nil {
				return RequestTemplate{}, fmt.Errorf("params: %w", err)
			}
			tmpl.Params = params
		}
	}
	return tmpl, nil
}

func scalarString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func toHeaderMap(raw interface{}) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", raw)
	}
	headers := make(map[string]string, len(m))
	for k, v := range m {
		headers[k] = scalarString(v)
	}
	return headers, nil
}

func toFields(raw interface{}) (Fields, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", raw)
	}
	fields := make(Fields, len(m))
	for k, v := range m {
		fields[k] = fromDecoded(v)
	}
	return fields, nil
}

// fromDecoded keeps the lexical integer/float distinction of JSON numbers,
// so 1 is an integer and 1.0 is a float.
func fromDecoded(v interface{}) FieldValue {
	num, ok := v.(json.Number)
	if !ok {
		return FromValue(v)
	}
	s := num.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntegerValue(i)
		}
	}
	f, err := num.Float64()
	if err != nil {
		return UnsupportedValue(num)
	}
	return FloatValue(f)
}

var supportedMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodHead:    {},
}

// SupportedMethod reports whether method (any case) can be dispatched.
func SupportedMethod(method string) bool {
	_, ok := supportedMethods[strings.ToUpper(strings.TrimSpace(method))]
	return ok
}

// Lint reports templates that will be skipped at dispatch time.
// It never fails the load: such templates stay in the catalog and are skipped per cycle.
func Lint(templates []RequestTemplate) []string {
	var issues []string
	for idx, tmpl := range templates {
		label := fmt.Sprintf("templates[%d] (%s)", idx, tmpl.DisplayName())
		if strings.TrimSpace(tmpl.Method) == "" {
			issues = append(issues, label+": method is missing")
		} else if !SupportedMethod(tmpl.Method) {
			issues = append(issues, fmt.Sprintf("%s: unsupported method %q", label, tmpl.Method))
		}
		if strings.TrimSpace(tmpl.URL) == "" {
			issues = append(issues, label+": url is missing")
		}
	}
	return issues
}
