// Package classify decides which structured prompt template fits a
// question: coding (write/trace code) or design (architect a system).
package classify

import "regexp"

// QuestionType is the classification outcome.
type QuestionType string

const (
	TypeCoding QuestionType = "coding"
	TypeDesign QuestionType = "design"
)

// modeBias is added to a family's score when the caller's active skill
// mode matches that family.
const modeBias = 2

// signal is one row of a pattern family table.
type signal struct {
	name    string
	pattern *regexp.Regexp
}

// Result carries the decision plus the raw scores for observability.
type Result struct {
	Type       QuestionType
	CodingHits int // Distinct coding signals matched (bias included)
	DesignHits int // Distinct design signals matched (bias included)
}

// Classifier scores text against two independent pattern families.
// Scores count distinct signals hit, not raw match counts.
type Classifier struct {
	coding    []signal
	design    []signal
	biasModes map[string]QuestionType
}

// New returns a classifier with the default signal tables. The biasing
// modes are dsa (coding) and system-design (design); other modes add no
// bias.
func New() *Classifier {
	return &Classifier{
		coding: []signal{
			{"code-tokens", regexp.MustCompile(`[{};]|=>|\breturn\b|\bfunc\b|\bdef\b|\bclass\b`)},
			{"problem-phrasing", regexp.MustCompile(`(?i)\b(?:write a function|implement|given an? (?:array|string|list|tree|graph)|edge cases?|test cases?)\b`)},
			{"data-structures", regexp.MustCompile(`(?i)\b(?:linked list|hash (?:map|table)|binary tree|stack|queue|heap|trie)\b`)},
			{"algorithm-vocab", regexp.MustCompile(`(?i)\b(?:recursion|iterate|sorting|two pointers|sliding window|dynamic programming|backtracking|memoization)\b`)},
			{"complexity", regexp.MustCompile(`(?i)\bO\([^)]{1,20}\)|time complexity|space complexity`)},
			{"loops", regexp.MustCompile(`(?i)\b(?:for loop|while loop|nested loops?|off[- ]by[- ]one)\b`)},
		},
		design: []signal{
			{"design-phrasing", regexp.MustCompile(`(?i)\b(?:design a|system design|high[- ]level design|architecture|architect)\b`)},
			{"scalability", regexp.MustCompile(`(?i)\b(?:scal(?:es?|ed|ing|able|ability)|throughput|latency|qps|rps)\b`)},
			{"infrastructure", regexp.MustCompile(`(?i)\b(?:load balanc(?:er|ing)|api gateway|cdn|message queue|microservices?|sharding)\b`)},
			{"storage-choice", regexp.MustCompile(`(?i)\b(?:database|sql|nosql|cach(?:e|ing)|blob storage|data model)\b`)},
			{"consistency", regexp.MustCompile(`(?i)\b(?:consistency|availability|partition tolerance|replication|cap theorem|eventual(?:ly)? consistent)\b`)},
			{"capacity", regexp.MustCompile(`(?i)\b\d+\s?(?:million|billion)\b|\bback[- ]of[- ]the[- ]envelope\b|\bcapacity estimat`)},
		},
		biasModes: map[string]QuestionType{
			"dsa":           TypeCoding,
			"system-design": TypeDesign,
		},
	}
}

// Classify scores extracted text against both families and applies the
// decision rule: coding wins on a strictly greater score, design wins
// otherwise (ties included). Empty text short-circuits to a
// mode-derived default without running any patterns.
func (c *Classifier) Classify(extractedText, activeMode string) Result {
	if extractedText == "" {
		return Result{Type: c.defaultFor(activeMode)}
	}

	coding := distinctHits(c.coding, extractedText)
	design := distinctHits(c.design, extractedText)

	switch c.biasModes[activeMode] {
	case TypeCoding:
		coding += modeBias
	case TypeDesign:
		design += modeBias
	}

	result := Result{CodingHits: coding, DesignHits: design, Type: TypeDesign}
	if coding > design {
		result.Type = TypeCoding
	}
	return result
}

func (c *Classifier) defaultFor(mode string) QuestionType {
	if t, ok := c.biasModes[mode]; ok {
		return t
	}
	return TypeCoding
}

// distinctHits counts how many signals match at least once; repeated
// matches of the same signal count once.
func distinctHits(signals []signal, text string) int {
	hits := 0
	for _, sig := range signals {
		if sig.pattern.MatchString(text) {
			hits++
		}
	}
	return hits
}
