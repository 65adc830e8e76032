package classifier

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/whisper/sentinel/internal/pipeline"
)

// Compiled patterns for structural abuse detection. Compiled once at
// package init and reused for every call, safe for concurrent use.
var (
	// spamURLPattern matches http/https URLs, www. URLs, and bare domains
	// on common spam TLDs. The bare-domain variant requires a trailing "/"
	// to avoid false positives on version strings like "v2.0".
	spamURLPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\S+\.(com|net|org|io|co|xyz|info|biz|ru|cn|tk|ml|ga|cf)/\S*)`)

	// phonePattern matches common phone number formats, anchored to
	// whitespace boundaries so short numbers like "100" don't match.
	phonePattern = regexp.MustCompile(`(?:^|\s)(\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}(?:\s|$)`)
)

// Default term lists per severity tier. Callers with real blocklists
// supply them through NewRulesWithTerms; these defaults keep the backend
// usable out of the box.
var (
	defaultHarmfulTerms = []string{
		"kill yourself", "kys", "go die", "i will kill", "i will hurt",
		"bomb threat", "free money",
	}
	defaultInappropriateTerms = []string{
		"idiot", "moron", "loser", "stupid",
	}
	defaultQuestionableTerms = []string{
		"damn", "hell", "crap", "sucks",
	}
)

// severityRank orders the tiers so the strictest hit wins.
var severityRank = map[pipeline.Severity]int{
	pipeline.SeveritySafe:          0,
	pipeline.SeverityQuestionable:  1,
	pipeline.SeverityInappropriate: 2,
	pipeline.SeverityHarmful:       3,
}

// Rules is a deterministic rule-based Classifier backend. It matches
// content against per-severity term lists and structural spam checks
// (URLs, phone numbers, character and word flooding) and returns the
// strictest severity that fired. It never calls out and never fails, which
// makes it the offline and test-fixture backend of choice.
type Rules struct {
	harmful       terms
	inappropriate terms
	questionable  terms
}

// terms splits a list into single words and multi-word phrases so word
// matches can be exact-token (no substring false positives) while phrases
// use substring search.
type terms struct {
	words   map[string]bool
	phrases []string
}

func newTerms(list []string) terms {
	t := terms{words: make(map[string]bool)}
	for _, raw := range list {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" {
			continue
		}
		if strings.Contains(term, " ") {
			t.phrases = append(t.phrases, term)
		} else {
			t.words[term] = true
		}
	}
	return t
}

// match returns the first matching term, or "" if nothing fired.
func (t terms) match(lowered string, tokens []string) string {
	for _, phrase := range t.phrases {
		if strings.Contains(lowered, phrase) {
			return phrase
		}
	}
	for _, tok := range tokens {
		if t.words[tok] {
			return tok
		}
	}
	return ""
}

// NewRules creates a rule-based backend with the default term lists.
func NewRules() *Rules {
	return NewRulesWithTerms(defaultHarmfulTerms, defaultInappropriateTerms, defaultQuestionableTerms)
}

// NewRulesWithTerms creates a rule-based backend with caller-supplied term
// lists, one per severity tier.
func NewRulesWithTerms(harmful, inappropriate, questionable []string) *Rules {
	return &Rules{
		harmful:       newTerms(harmful),
		inappropriate: newTerms(inappropriate),
		questionable:  newTerms(questionable),
	}
}

// Classify evaluates the content against every rule tier and returns the
// strictest severity that matched, with a rationale naming the rule. The
// metadata summary is unused; the rules operate on the raw text alone.
func (r *Rules) Classify(_ context.Context, content, _ string) (pipeline.Classification, error) {
	lowered := strings.ToLower(content)
	tokens := tokenize(lowered)

	verdict := pipeline.Classification{
		Severity:    pipeline.SeveritySafe,
		Explanation: "No rule matched; content appears to follow guidelines.",
	}

	raise := func(severity pipeline.Severity, explanation string) {
		if severityRank[severity] > severityRank[verdict.Severity] {
			verdict = pipeline.Classification{Severity: severity, Explanation: explanation}
		}
	}

	if term := r.harmful.match(lowered, tokens); term != "" {
		raise(pipeline.SeverityHarmful, "Matched harmful term "+strconv.Quote(term)+".")
	}
	if term := r.inappropriate.match(lowered, tokens); term != "" {
		raise(pipeline.SeverityInappropriate, "Matched blocked term "+strconv.Quote(term)+".")
	}
	if term := r.questionable.match(lowered, tokens); term != "" {
		raise(pipeline.SeverityQuestionable, "Matched borderline term "+strconv.Quote(term)+".")
	}

	switch {
	case spamURLPattern.MatchString(content):
		raise(pipeline.SeverityInappropriate, "Content contains a link, which is treated as spam.")
	case phonePattern.MatchString(content):
		raise(pipeline.SeverityInappropriate, "Content contains a phone number, which is treated as spam.")
	case hasCharFlood(content):
		raise(pipeline.SeverityQuestionable, "Content contains character flooding.")
	case hasWordFlood(content):
		raise(pipeline.SeverityQuestionable, "Content contains repeated word flooding.")
	}

	return verdict, nil
}

// tokenize splits lowered text into words, stripping leading and trailing
// punctuation so "badword!" matches the bare term.
func tokenize(lowered string) []string {
	fields := strings.Fields(lowered)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// hasCharFlood reports 5+ consecutive identical characters. RE2 has no
// backreferences, so this is a linear scan.
func hasCharFlood(text string) bool {
	const threshold = 5

	count := 1
	prev := rune(-1)
	for _, r := range text {
		if r == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = r
		}
	}
	return false
}

// hasWordFlood reports the same word appearing 3+ times consecutively,
// case-insensitive.
func hasWordFlood(text string) bool {
	const threshold = 3

	words := strings.Fields(text)
	if len(words) < threshold {
		return false
	}

	count := 1
	prev := ""
	for _, w := range words {
		lower := strings.ToLower(w)
		if lower == prev {
			count++
			if count >= threshold {
				return true
			}
		} else {
			count = 1
			prev = lower
		}
	}
	return false
}
