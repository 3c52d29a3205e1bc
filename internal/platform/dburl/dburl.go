// Package dburl normalizes Postgres connection strings shared by the API and the migration CLI.
package dburl

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// Normalize sets disable_prepared_binary_result=yes on URL-style DSNs unless the caller
// already chose a value. Key/value DSNs are returned unchanged.
func Normalize(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get(preparedBinaryParam) != "" {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// Name returns the database name of a URL-style or key/value DSN, or "" when absent.
func Name(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, token := range strings.Fields(raw) {
		if value, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(value, `"'`)
		}
	}
	return ""
}
