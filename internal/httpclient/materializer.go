package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/torosent/trafficsim/internal/catalog"
	"github.com/torosent/trafficsim/internal/synth"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// ErrTemplateRejected marks a template that cannot be dispatched this cycle.
var ErrTemplateRejected = errors.New("template rejected")

// RejectError describes why a template was skipped.
type RejectError struct {
	Template string
	Reason   string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("skipping %s: %s", e.Template, e.Reason)
}

func (e *RejectError) Unwrap() error { return ErrTemplateRejected }

func reject(tmpl catalog.RequestTemplate, format string, args ...interface{}) error {
	return &RejectError{Template: tmpl.DisplayName(), Reason: fmt.Sprintf(format, args...)}
}

// MaterializedRequest is one fully resolved request for one cycle.
type MaterializedRequest struct {
	Name   string
	Method string
	URL    string
	Header http.Header
	Body   string
	Query  url.Values
	// PlainText is set when the body could not be encoded as JSON.
	PlainText bool
}

// HasBody reports whether the method sends the encoded body.
func (r *MaterializedRequest) HasBody() bool {
	return methodHasBody(r.Method)
}

// Build creates the outbound request. Query values are appended to any query already on the URL.
func (r *MaterializedRequest) Build(ctx context.Context) (*http.Request, error) {
	if r == nil {
		return nil, errors.New("request cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(r.Query) > 0 {
		q := target.Query()
		for key, values := range r.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	send := r.HasBody() && r.Body != ""
	if send {
		body = strings.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if send {
		payload := r.Body
		req.ContentLength = int64(len(payload))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(payload)), nil
		}
	}
	return req, nil
}

// Materializer builds MaterializedRequests from templates.
type Materializer struct {
	domain string
	gen    *synth.Generator
}

// NewMaterializer returns a Materializer. domain may be empty, in which case
// templates with relative URLs are rejected.
func NewMaterializer(domain string, gen *synth.Generator) *Materializer {
	if gen == nil {
		gen = synth.New(0)
	}
	return &Materializer{domain: strings.TrimSpace(domain), gen: gen}
}

// Materialize resolves tmpl into a request. Errors wrap ErrTemplateRejected.
func (m *Materializer) Materialize(tmpl catalog.RequestTemplate) (*MaterializedRequest, error) {
	method := strings.ToUpper(strings.TrimSpace(tmpl.Method))
	target := strings.TrimSpace(tmpl.URL)
	if method == "" || target == "" {
		return nil, reject(tmpl, "method or url is missing")
	}
	if !catalog.SupportedMethod(method) {
		return nil, reject(tmpl, "unsupported method %q", method)
	}

	if !HasHTTPScheme(target) {
		if m.domain == "" {
			return nil, reject(tmpl, "url %q has no http(s) scheme and no default domain is configured", target)
		}
		target = JoinDomain(m.domain, target)
		if !HasHTTPScheme(target) {
			return nil, reject(tmpl, "default domain %q has no http(s) scheme", m.domain)
		}
	}

	resolved, err := synth.ResolvePath(target, m.gen)
	if err != nil {
		return nil, reject(tmpl, "invalid url %q: %v", target, err)
	}

	headers, err := canonicalHeaders(tmpl.Headers)
	if err != nil {
		return nil, reject(tmpl, "%v", err)
	}

	body := m.gen.Fields(tmpl.Body)
	if len(body) == 0 {
		body = tmpl.Body
	}
	params := m.gen.Fields(tmpl.Params)
	if len(params) == 0 {
		params = tmpl.Params
	}

	req := &MaterializedRequest{
		Name:   tmpl.DisplayName(),
		Method: method,
		URL:    resolved,
		Header: headers,
		Query:  toQuery(params),
	}
	if body != nil {
		encoded, contentType := encodeBody(body)
		req.Body = encoded
		req.PlainText = contentType == ContentTypeText
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// HasHTTPScheme reports whether target starts with http:// or https://.
func HasHTTPScheme(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// JoinDomain prefixes target with domain, keeping exactly one slash between them.
func JoinDomain(domain, target string) string {
	return strings.TrimRight(domain, "/") + "/" + strings.TrimLeft(target, "/")
}

func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// encodeBody returns the JSON encoding of fields, or a key=value text rendering
// when JSON cannot represent a value (NaN or infinite floats).
func encodeBody(fields catalog.Fields) (string, string) {
	data, err := json.Marshal(fields.Interface())
	if err != nil {
		return fields.Text(), ContentTypeText
	}
	return string(data), ContentTypeJSON
}

func toQuery(params catalog.Fields) url.Values {
	if len(params) == 0 {
		return nil
	}
	q := make(url.Values, len(params))
	for _, key := range params.Keys() {
		q.Set(key, params[key].Format())
	}
	return q
}

func canonicalHeaders(in map[string]string) (http.Header, error) {
	headers := http.Header{}
	for key, value := range in {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		canonicalKey := http.CanonicalHeaderKey(trimmedKey)
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", canonicalKey)
		}
		headers.Set(canonicalKey, value)
	}
	return headers, nil
}
