package browser

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL resolves ref against base. Absolute refs are returned as
// given; path-relative, scheme-relative ("//host/path") and query-only refs
// are resolved the way a browser would. No network I/O is performed.
func ResolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyURL
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if base == "" {
		return "", fmt.Errorf("cannot resolve relative url %q: %w", ref, ErrNoPage)
	}

	parsedBase, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	return parsedBase.ResolveReference(parsed).String(), nil
}

// appendQuery adds values to the query of target
func appendQuery(target string, values url.Values) string {
	if len(values) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + values.Encode()
}
