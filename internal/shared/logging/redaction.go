package logging

import "regexp"

var (
	bearerPattern     = regexp.MustCompile(`(?i)(Bearer\s+)([A-Za-z0-9\-_.]{20,})`)
	groqKeyPattern    = regexp.MustCompile(`gsk_[A-Za-z0-9]{16,}`)
	connStringPattern = regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@`)
	secretPattern     = regexp.MustCompile(`(?i)([A-Z_]*(SECRET|API_KEY)[=:]\s*)([^\s"',}]+)`)
)

// RedactString masks bearer tokens, completion API keys, credentials embedded
// in connection strings and KEY=value secrets.
func RedactString(s string) string {
	if s == "" {
		return s
	}
	s = bearerPattern.ReplaceAllString(s, `${1}***REDACTED***`)
	s = groqKeyPattern.ReplaceAllString(s, `***REDACTED***`)
	s = connStringPattern.ReplaceAllString(s, `://***REDACTED***@`)
	s = secretPattern.ReplaceAllString(s, `${1}***REDACTED***`)
	return s
}
