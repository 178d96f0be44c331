package synth

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`:\w+`)

// ResolvePath replaces every ":name" token in the URL path with an integer in
// [MinInt, MaxInt], one draw per token. Query and fragment are left untouched,
// and a URL without tokens is returned unchanged.
func ResolvePath(rawURL string, g *Generator) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	escaped := u.EscapedPath()
	if !placeholderPattern.MatchString(escaped) {
		return rawURL, nil
	}

	replaced := placeholderPattern.ReplaceAllStringFunc(escaped, func(string) string {
		return strconv.Itoa(g.Int(MinInt, MaxInt))
	})
	path, err := url.PathUnescape(replaced)
	if err != nil {
		return "", fmt.Errorf("rebuild path: %w", err)
	}
	u.Path = path
	u.RawPath = replaced
	return u.String(), nil
}
