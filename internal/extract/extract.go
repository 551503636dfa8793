// Package extract holds the deterministic text matchers the dialogue engine
// uses to pull patient fields out of free-form utterances. Matchers are
// independent: all of them run on every utterance and each contributes at
// most one field.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fields is a partial set of patient fields recovered from one utterance.
// Zero values mean "not present in this utterance".
type Fields struct {
	FirstName        string
	LastName         string
	DateOfBirth      string // normalized YYYY-MM-DD
	Phone            string // normalized DDD-DDD-DDDD
	Email            string
	InsuranceCarrier string
	MemberID         string
}

// Empty reports whether no matcher fired.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// introNamePatterns capture "first last" following an introductory phrase.
// These are authoritative; the bare two-word fallback is opt-in because it
// misfires on unrelated phrases ("yes please").
var introNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmy name is ([a-z]+)\s+([a-z]+)`),
	regexp.MustCompile(`\bfirst and last name is ([a-z]+)\s+([a-z]+)`),
	regexp.MustCompile(`\bname is ([a-z]+)\s+([a-z]+)`),
	regexp.MustCompile(`\bi'm ([a-z]+)\s+([a-z]+)`),
	regexp.MustCompile(`\bi am ([a-z]+)\s+([a-z]+)`),
}

// bareNamePattern matches an utterance that is exactly two word tokens.
var bareNamePattern = regexp.MustCompile(`^\s*([a-z]+)\s+([a-z]+)\s*$`)

var (
	// Month-first and year-first date shapes. Which pattern matched decides
	// the field order; 2-digit ambiguity is resolved positionally.
	dobMDYPattern = regexp.MustCompile(`\b(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})\b`)
	dobYMDPattern = regexp.MustCompile(`\b(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})\b`)

	phonePattern    = regexp.MustCompile(`\b(\d{3})[-/\s]?(\d{3})[-/\s]?(\d{4})\b`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	memberIDPattern = regexp.MustCompile(`(?i)member\s*id[:\s]*([A-Za-z0-9]+)`)
)

// Extractor applies the full matcher chain. It carries the carrier list and
// the fallback policy so they stay configuration, not code.
type Extractor struct {
	carriers         []string
	bareNameFallback bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithBareNameFallback enables the permissive two-word name matcher.
func WithBareNameFallback() Option {
	return func(e *Extractor) {
		e.bareNameFallback = true
	}
}

// New builds an extractor recognizing the supplied insurance carriers, in
// match-priority order.
func New(carriers []string, opts ...Option) *Extractor {
	e := &Extractor{carriers: carriers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every matcher against the utterance and returns whatever
// fields fired. It never fails; an unrecognized utterance yields zero fields.
func (e *Extractor) Extract(utterance string) Fields {
	var f Fields
	f.FirstName, f.LastName = e.extractName(utterance)
	f.DateOfBirth = ExtractDateOfBirth(utterance)
	f.Phone = ExtractPhone(utterance)
	f.Email = ExtractEmail(utterance)
	f.InsuranceCarrier = e.extractCarrier(utterance)
	f.MemberID = ExtractMemberID(utterance)
	return f
}

// Insurance runs only the insurance matchers. The dialogue engine uses this
// in the insurance state so a member ID like "AB1234567" is never mistaken
// for something else.
func (e *Extractor) Insurance(utterance string) Fields {
	return Fields{
		InsuranceCarrier: e.extractCarrier(utterance),
		MemberID:         ExtractMemberID(utterance),
	}
}

func (e *Extractor) extractName(utterance string) (string, string) {
	lower := strings.ToLower(utterance)
	for _, re := range introNamePatterns {
		if m := re.FindStringSubmatch(lower); len(m) == 3 {
			return titleCase(m[1]), titleCase(m[2])
		}
	}
	if e.bareNameFallback {
		if m := bareNamePattern.FindStringSubmatch(lower); len(m) == 3 {
			return titleCase(m[1]), titleCase(m[2])
		}
	}
	return "", ""
}

func (e *Extractor) extractCarrier(utterance string) string {
	lower := strings.ToLower(utterance)
	for _, carrier := range e.carriers {
		if strings.Contains(lower, strings.ToLower(carrier)) {
			return carrier
		}
	}
	return ""
}

// ExtractDateOfBirth normalizes MM/DD/YYYY, MM-DD-YYYY, YYYY/MM/DD, and
// YYYY-MM-DD inputs to zero-padded YYYY-MM-DD.
func ExtractDateOfBirth(utterance string) string {
	if m := dobMDYPattern.FindStringSubmatch(utterance); len(m) == 4 {
		return fmt.Sprintf("%s-%s-%s", m[3], padTwo(m[1]), padTwo(m[2]))
	}
	if m := dobYMDPattern.FindStringSubmatch(utterance); len(m) == 4 {
		return fmt.Sprintf("%s-%s-%s", m[1], padTwo(m[2]), padTwo(m[3]))
	}
	return ""
}

// ExtractPhone normalizes a 10-digit US number to DDD-DDD-DDDD.
func ExtractPhone(utterance string) string {
	if m := phonePattern.FindStringSubmatch(utterance); len(m) == 4 {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return ""
}

// ExtractEmail returns the first email-shaped token, as written.
func ExtractEmail(utterance string) string {
	return emailPattern.FindString(utterance)
}

// ExtractMemberID captures the token following "member id", as written.
func ExtractMemberID(utterance string) string {
	if m := memberIDPattern.FindStringSubmatch(utterance); len(m) == 2 {
		return m[1]
	}
	return ""
}

func padTwo(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d", n)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
