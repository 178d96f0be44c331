// Package response decodes completed responses into summaries for reporting.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 1024 * 1024

// ErrDecode marks a body that could not be decoded per its declared content type.
var ErrDecode = errors.New("response decode failed")

// BodyKind tells which variant a Body holds.
type BodyKind int

const (
	BodyRaw BodyKind = iota
	BodyText
	BodyStructured
)

func (k BodyKind) String() string {
	switch k {
	case BodyStructured:
		return "structured"
	case BodyText:
		return "text"
	default:
		return "raw"
	}
}

// Body is the decoded response payload.
type Body struct {
	Kind       BodyKind
	Structured interface{}
	Text       string
	Raw        []byte
}

// Summary describes one completed response.
type Summary struct {
	Name        string
	Method      string
	URL         string
	Cycle       int
	StatusCode  int
	ContentType string
	Latency     time.Duration
	Body        Body
	// DecodeErr wraps ErrDecode when the body did not match its content type.
	DecodeErr error
}

// Classify reads and decodes resp. It returns nil when resp is nil.
// The caller still owns closing resp.Body.
func Classify(resp *http.Response) *Summary {
	if resp == nil {
		return nil
	}

	summary := &Summary{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil {
		summary.Method = resp.Request.Method
		if resp.Request.URL != nil {
			summary.URL = resp.Request.URL.String()
		}
	}

	var data []byte
	if resp.Body != nil {
		var err error
		data, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
		if err != nil {
			summary.DecodeErr = fmt.Errorf("%w: read body: %v", ErrDecode, err)
			summary.Body = Body{Kind: BodyRaw, Raw: data}
			return summary
		}
	}

	if !hasBody(summary.Method, summary.StatusCode) || len(data) == 0 {
		summary.Body = Body{Kind: BodyRaw}
		return summary
	}

	summary.Body, summary.DecodeErr = decode(summary.ContentType, data)
	return summary
}

// hasBody reports whether a response to method with status may carry a body.
func hasBody(method string, status int) bool {
	if method == http.MethodHead {
		return false
	}
	switch {
	case status >= 100 && status < 200, status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

func decode(contentType string, data []byte) (Body, error) {
	kind := strings.ToLower(contentType)
	switch {
	case strings.Contains(kind, "application/json"):
		var value interface{}
		if err := json.Unmarshal(data, &value); err != nil {
			return Body{Kind: BodyRaw, Raw: data}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return Body{Kind: BodyStructured, Structured: value, Raw: data}, nil
	case strings.Contains(kind, "text/html"):
		return Body{Kind: BodyText, Text: string(data), Raw: data}, nil
	default:
		return Body{Kind: BodyRaw, Raw: data}, nil
	}
}

// Succeeded reports a non-error status with a cleanly decoded body.
func (s *Summary) Succeeded() bool {
	return s != nil && s.DecodeErr == nil && s.StatusCode < 400
}
