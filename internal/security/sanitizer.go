// Package security sanitizes coordination-log content and file paths
// before they reach a log line or a UI-visible message, and validates the
// CLI/path/session-id inputs accepted at the HTTP boundary.
package security

import (
	"regexp"
	"strings"
)

// Patterns for sensitive data that might show up in an agent's free-form
// prompt text, coordination message, or PTY output. Trimmed to the
// concerns an agent fleet actually produces — no cloud-provider-specific
// patterns (GCP service account JSON, AWS access keys), since hive-manager
// has no cloud component to leak credentials for.
var (
	apiKeyPattern       = regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret|api[_-]?token)[[:space:]]*[:=][[:space:]]*['"` + "`" + `]?([a-zA-Z0-9_\-]{16,})`)
	bearerTokenPattern  = regexp.MustCompile(`(?i)bearer[[:space:]]+([a-zA-Z0-9_\-\.]+)`)
	privateKeyPattern   = regexp.MustCompile(`(?s)-----BEGIN[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----.*?-----END[[:space:]]+(?:RSA[[:space:]]+)?PRIVATE[[:space:]]+KEY-----`)
	urlPasswordPattern  = regexp.MustCompile(`(?i)(https?|ftp)://[^:]+:([^@]+)@`)
	jwtPattern          = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`)
	githubTokenPattern  = regexp.MustCompile(`(gh[ps]_[a-zA-Z0-9]{36}|github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]{59})`)
)

// LogSanitizer redacts secrets from text before it is persisted to the
// coordination log or forwarded to the UI event stream. Distinct from, and
// upstream of, the Injection Manager's own control-character escaping and
// 500-code-point truncation (§4.D write discipline) — this pass runs first
// and targets content, not terminal control sequences.
type LogSanitizer struct {
	customPatterns []*regexp.Regexp
}

// NewLogSanitizer creates a sanitizer with the default pattern set.
func NewLogSanitizer() *LogSanitizer {
	return &LogSanitizer{customPatterns: make([]*regexp.Regexp, 0)}
}

// AddCustomPattern registers an additional pattern to redact.
func (ls *LogSanitizer) AddCustomPattern(pattern *regexp.Regexp) {
	ls.customPatterns = append(ls.customPatterns, pattern)
}

// Sanitize redacts recognized secret shapes from message.
func (ls *LogSanitizer) Sanitize(message string) string {
	message = githubTokenPattern.ReplaceAllString(message, "[REDACTED-GITHUB-TOKEN]")
	message = apiKeyPattern.ReplaceAllString(message, "${1}=[REDACTED]")
	message = bearerTokenPattern.ReplaceAllString(message, "Bearer [REDACTED]")
	message = privateKeyPattern.ReplaceAllString(message, "[REDACTED-PRIVATE-KEY]")
	message = urlPasswordPattern.ReplaceAllString(message, "${1}://[REDACTED]@")
	message = jwtPattern.ReplaceAllString(message, "[REDACTED-JWT]")

	for _, pattern := range ls.customPatterns {
		message = pattern.ReplaceAllString(message, "[REDACTED]")
	}

	return sanitizeBase64InContext(message)
}

// sanitizeBase64InContext only redacts base64 blobs that appear after a
// credential-suggestive key name, to avoid mangling ordinary base64
// content an agent might legitimately emit.
func sanitizeBase64InContext(message string) string {
	contextPattern := regexp.MustCompile(`(?i)(auth|token|key|secret|password|credential)[^=:]*[:=]\s*["'` + "`" + `]?([A-Za-z0-9+/]{20,}={0,2})`)
	return contextPattern.ReplaceAllString(message, "${1}=[REDACTED-BASE64]")
}

// ContainsSensitive reports whether message matches any redaction pattern,
// without modifying it — useful for a caller that wants to decide whether
// to sanitize at all. Absorbed from the former standalone Scrubber type.
func (ls *LogSanitizer) ContainsSensitive(message string) bool {
	for _, pattern := range []*regexp.Regexp{githubTokenPattern, apiKeyPattern, bearerTokenPattern, privateKeyPattern, urlPasswordPattern, jwtPattern} {
		if pattern.MatchString(message) {
			return true
		}
	}
	for _, pattern := range ls.customPatterns {
		if pattern.MatchString(message) {
			return true
		}
	}
	return false
}

// SanitizeError sanitizes an error's message text.
func (ls *LogSanitizer) SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return ls.Sanitize(err.Error())
}

// SanitizeMap sanitizes every key and value of m, additionally blanking
// values whose key name itself suggests sensitive content.
func (ls *LogSanitizer) SanitizeMap(m map[string]string) map[string]string {
	sanitized := make(map[string]string, len(m))
	for k, v := range m {
		sanitizedKey := ls.Sanitize(k)
		sanitizedValue := ls.Sanitize(v)
		if isSensitiveKey(k) {
			sanitizedValue = "[REDACTED]"
		}
		sanitized[sanitizedKey] = sanitizedValue
	}
	return sanitized
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range []string{"password", "passwd", "pwd", "secret", "token", "key", "auth", "credential", "cred", "private", "api", "bearer"} {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}

// PathSanitizer redacts user-identifying path components (home directory,
// session-scoped temp paths) before a path reaches a log line.
type PathSanitizer struct {
	homeDir string
}

// NewPathSanitizer creates a path sanitizer.
func NewPathSanitizer() *PathSanitizer {
	return &PathSanitizer{homeDir: "[HOME]"}
}

// Sanitize redacts sensitive path components from path.
func (ps *PathSanitizer) Sanitize(path string) string {
	path = regexp.MustCompile(`/home/[^/]+`).ReplaceAllString(path, ps.homeDir)
	path = regexp.MustCompile(`/Users/[^/]+`).ReplaceAllString(path, ps.homeDir)
	path = strings.Replace(path, "~", ps.homeDir, 1)
	path = regexp.MustCompile(`/\.hive-manager/[^/]+`).ReplaceAllString(path, "/.hive-manager/[SESSION-ID]")
	return path
}
