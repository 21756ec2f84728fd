// Package security masks credentials before text reaches a log or the
// console.
package security

import (
	"regexp"
	"sort"
	"strings"
)

// Mask replaces redacted values.
const Mask = "***REDACTED***"

// literals shorter than this are too likely to occur in ordinary text
const minSecretLen = 6

type pattern struct {
	name        string
	re          *regexp.Regexp
	replacement string
	priority    int
}

var defaultPatterns = []struct {
	name        string
	expr        string
	replacement string
	priority    int
}{
	{"authorization_header", `(?i)(authorization\s*:\s*)(bearer\s+)?([a-zA-Z0-9._-]{20,})`, "${1}${2}" + Mask, 10},
	{"bearer_token", `(?i)(bearer\s+)([a-zA-Z0-9._-]{20,})`, "${1}" + Mask, 10},
	{"openai_key", `\bsk-[A-Za-z0-9_-]{16,}`, Mask, 10},
	{"github_token", `\bgh[pousr]_[A-Za-z0-9_]{36,}\b`, Mask, 10},
	{"aws_access_key", `\bAKIA[0-9A-Z]{16}\b`, Mask, 10},
	{"jwt_token", `\beyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\b`, Mask, 9},
	{"api_key", `(?i)(api[_-]?key)(\s*[:=]\s*)["']?[a-zA-Z0-9._-]{16,}["']?`, "${1}${2}" + Mask, 8},
	{"env_secret", `\b([A-Z][A-Z0-9_]*(?:KEY|SECRET|TOKEN|PASSWORD))=[^\s"']+`, "${1}=" + Mask, 8},
}

// Redactor removes known secrets and credential-shaped substrings.
type Redactor struct {
	patterns []pattern
	secrets  []string
}

// NewRedactor creates a Redactor with the default patterns. Every literal in
// secrets of at least six characters is also masked wherever it appears.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, p := range defaultPatterns {
		r.patterns = append(r.patterns, pattern{
			name:        p.name,
			re:          regexp.MustCompile(p.expr),
			replacement: p.replacement,
			priority:    p.priority,
		})
	}
	sort.SliceStable(r.patterns, func(i, j int) bool {
		return r.patterns[i].priority > r.patterns[j].priority
	})

	for _, s := range secrets {
		if s = strings.TrimSpace(s); len(s) >= minSecretLen {
			r.secrets = append(r.secrets, s)
		}
	}
	// longer secrets first so a secret containing another is masked whole
	sort.Slice(r.secrets, func(i, j int) bool { return len(r.secrets[i]) > len(r.secrets[j]) })
	return r
}

// Redact returns text with secrets masked.
func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	for _, s := range r.secrets {
		text = strings.ReplaceAll(text, s, Mask)
	}
	for _, p := range r.patterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}

// MaskSecret shows only the first four characters of a long secret, for
// logging which key is in use.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
