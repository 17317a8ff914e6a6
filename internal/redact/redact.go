// Package redact strips credentials, connection strings, SQL text and other
// sensitive fragments from error messages before they are written to logs.
// Client responses never carry raw error text; this package protects the logs.
package redact

import "regexp"

// Placeholder is the replacement used for generic sensitive fragments.
const Placeholder = "[REDACTED]"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order; connection strings go first so the password
// rule does not split them.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb(\+srv)?)://[^\s]+`), "[REDACTED_DSN]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}`), "[REDACTED_HASH]"},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*[=:]\s*|\s+)['"]?[^'"&\s]{3,}`), "[REDACTED_CREDENTIAL]"},
	{regexp.MustCompile(`(?i)(api[_-]?key|secret|token)(\s*[=:]\s*)[A-Za-z0-9_\-.~+/]{8,}`), "[REDACTED_KEY]"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[^;]*`), "[REDACTED_SQL]"},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), "[REDACTED_PATH]"},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
