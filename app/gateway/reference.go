package gateway

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Order references follow a fixed grammar: PREFIX + 14-digit creation
// timestamp + 4-digit random suffix. The grammar is what lets a reference be
// recovered from free-text bank transfer descriptions.
const (
	referenceTimeLayout  = "20060102150405"
	referenceSuffixSpan  = 10000
	referenceDigitsCount = 18
)

func NewReference(prefix string) string {
	return fmt.Sprintf("%s%s%04d",
		strings.ToUpper(strings.TrimSpace(prefix)),
		time.Now().Format(referenceTimeLayout),
		rand.Intn(referenceSuffixSpan),
	)
}

type ReferenceParser struct {
	prefix  string
	pattern *regexp.Regexp
}

func NewReferenceParser(prefix string) *ReferenceParser {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	return &ReferenceParser{
		prefix:  prefix,
		pattern: regexp.MustCompile(regexp.QuoteMeta(prefix) + fmt.Sprintf(`[0-9]{%d}`, referenceDigitsCount)),
	}
}

// ReferenceTime recovers the creation timestamp embedded in a reference.
func ReferenceTime(reference string) (time.Time, bool) {
	if len(reference) < referenceDigitsCount {
		return time.Time{}, false
	}
	digits := reference[len(reference)-referenceDigitsCount:]
	ts, err := time.ParseInLocation(referenceTimeLayout, digits[:len(referenceTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Parse scans a transfer description for an order reference. Banks mangle the
// content around the reference (names, diacritics-stripped words, extra
// whitespace), so the match runs over the uppercased text with spaces removed.
// A miss returns ok=false; it is the caller's unknown-reference path, never an
// error.
func (p *ReferenceParser) Parse(content string) (string, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(content), ""))
	match := p.pattern.FindString(normalized)
	if match == "" {
		return "", false
	}
	return match, true
}
