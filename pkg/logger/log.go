package logger

import "strings"

// headers whose values never reach the log
var sensitive = map[string]struct{}{
	"cookie":        {},
	"set-cookie":    {},
	"authorization": {},
}

func redactHeaderValue(k, v string) string {
	if v == "" {
		return ""
	}
	if _, ok := sensitive[strings.ToLower(k)]; ok {
		return "<redacted>"
	}
	return v
}

// SafeHeaders returns a compact string representation of headers suitable
// for logging, with sensitive values redacted. Only the first value per
// name is included for brevity.
func SafeHeaders(headers map[string][]string) string {
	parts := make([]string, 0, len(headers))
	for k, v := range headers {
		if len(v) == 0 {
			continue
		}
		parts = append(parts, k+"="+redactHeaderValue(k, v[0]))
	}
	return strings.Join(parts, "; ")
}
