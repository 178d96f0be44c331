package metrics

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/torosent/trafficsim/internal/httpclient"
)

var friendlyAliases = map[string]string{
	"url.Error":                        "Request URL error",
	"net.OpError":                      "Network error",
	"net.DNSError":                     "DNS lookup error",
	"tls.CertificateVerificationError": "TLS certificate error",
	"context.deadlineExceededError":    "Request timed out",
	"httpclient.RejectError":           "Template rejected",
}

// ErrorType names the most specific cause of a failed request. The client
// wraps everything in *url.Error, so the chain is searched for timeouts and
// network errors first.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	var rejectErr *httpclient.RejectError
	if errors.As(err, &rejectErr) {
		return fmt.Sprintf("%T", rejectErr)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("%T", context.DeadlineExceeded)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("%T", dnsErr)
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return fmt.Sprintf("%T", certErr)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("%T", opErr)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return fmt.Sprintf("%T", urlErr.Err)
	}
	return fmt.Sprintf("%T", err)
}

// FriendlyErrorName turns a recorded error type such as "*url.Error" into a
// readable label for reports.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(typeName), "*")
	if cleaned == "" {
		return "Unknown error"
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}

	pkg, name := "", cleaned
	if idx := strings.Index(cleaned, "."); idx != -1 {
		pkg, name = cleaned[:idx], cleaned[idx+1:]
	}
	pretty := splitCamel(name)
	if pkg != "" && pkg != "main" {
		return fmt.Sprintf("%s (%s)", pretty, pkg)
	}
	return pretty
}

// splitCamel turns "deadlineExceededError" into "Deadline Exceeded Error".
func splitCamel(name string) string {
	var words []string
	start := 0
	runes := []rune(name)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
