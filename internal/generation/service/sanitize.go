package service

import (
	"regexp"
	"strings"

	"github.com/inkwell-hq/inkwell/internal/config"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Sanitize rewrites prompt terms that image backends tend to flag. Matching
// is case-insensitive and on whole words, so "study" survives a "student"
// rule. The rule table comes from policy config and applies in order.
func Sanitize(prompt string, rules []config.SanitizerRule) string {
	out := prompt
	for _, rule := range rules {
		for _, term := range rule.Terms {
			re, err := compileTerm(term)
			if err != nil {
				continue
			}
			out = re.ReplaceAllString(out, rule.Replacement)
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(out, " "))
}

func compileTerm(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(term)) + `\b`)
}
