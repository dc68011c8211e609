// Package redaction scrubs secrets out of task descriptions before they are
// written to the plan store or the markdown journal.
package redaction

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFile is the per-home file of extra redaction patterns.
const IgnoreFile = ".focusignore"

// Replacement is substituted for every redacted span.
const Replacement = "[REDACTED]"

var builtinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk_(?:live|test)_[a-zA-Z0-9]+`),     // Stripe keys
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),                 // OpenAI-style keys
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]+`),                // GitHub tokens
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                      // AWS access key IDs
	regexp.MustCompile(`xox[bpa]-[a-zA-Z0-9-]+`),                // Slack tokens
	regexp.MustCompile(`-----BEGIN (?:RSA )?PRIVATE KEY-----`),  // private keys
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+`),  // JWTs
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]{16,}=*`), // Authorization headers
	regexp.MustCompile(`(?i)password\s*[:=]\s*["']?.+`),
	regexp.MustCompile(`(?i)secret\s*[:=]\s*["']?.+`),
	regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*["']?.+`),
}

var taggedRe = regexp.MustCompile(`(?s)<redacted>.*?</redacted>`)

// Redactor applies the built-in patterns plus any user patterns.
// The zero value applies only the built-ins.
type Redactor struct {
	extra []*regexp.Regexp
}

// New returns a Redactor with additional user patterns.
func New(extra []*regexp.Regexp) *Redactor {
	return &Redactor{extra: extra}
}

// Load builds a Redactor from <home>/.focusignore. A missing file is not an error.
func Load(home string) (*Redactor, error) {
	patterns, err := LoadIgnore(filepath.Join(home, IgnoreFile))
	if err != nil {
		return nil, err
	}
	return New(patterns), nil
}

// Apply redacts text. A nil Redactor behaves like the zero value.
func (r *Redactor) Apply(text string) string {
	var extra []*regexp.Regexp
	if r != nil {
		extra = r.extra
	}
	return Redact(text, extra)
}

// Patterns reports how many user patterns are loaded.
func (r *Redactor) Patterns() int {
	if r == nil {
		return 0
	}
	return len(r.extra)
}

// Redact runs the three passes over text:
//
//  1. <redacted>...</redacted> spans, repeated until none remain, then any
//     unpaired tag is dropped.
//  2. Built-in secret patterns.
//  3. extra patterns, in order.
func Redact(text string, extra []*regexp.Regexp) string {
	for {
		next := taggedRe.ReplaceAllString(text, Replacement)
		if next == text {
			break
		}
		text = next
	}
	text = strings.ReplaceAll(text, "<redacted>", "")
	text = strings.ReplaceAll(text, "</redacted>", "")

	for _, re := range builtinPatterns {
		text = re.ReplaceAllString(text, Replacement)
	}
	for _, re := range extra {
		text = re.ReplaceAllString(text, Replacement)
	}
	return text
}

// LoadIgnore compiles each non-blank, non-comment line of path as a regular
// expression. Returns nil, nil if the file does not exist.
func LoadIgnore(path string) ([]*regexp.Regexp, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []*regexp.Regexp
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, sc.Err()
}
