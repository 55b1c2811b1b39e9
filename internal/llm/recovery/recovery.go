// Package recovery turns free-form model replies into structured documents.
// Models wrap JSON in prose and code fences, leave trailing commas, and drop
// delimiters; the parsers here repair what they can and degrade gracefully
// when they cannot.
package recovery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cvforge/pkg/models"
)

// ParseError indicates no JSON document could be recovered from a reply.
type ParseError struct {
	Message string
	Raw     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response recovery failed: %s", e.Message)
}

var (
	fenceRegex         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	missingCommaRegex  = regexp.MustCompile(`}(\s*){`)
	splitStringRegex   = regexp.MustCompile(`"(\s*\n\s*)"`)
	bareKeyRegex       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	bareValueRegex     = regexp.MustCompile(`(:\s*)([A-Za-z][A-Za-z0-9 _-]*[A-Za-z0-9])(\s*[,}\]])`)
)

// ParseStructured recovers a JSON object from a model reply using the
// conservative repair ladder: strip code fences, parse directly, isolate the
// outermost braces, then apply textual repairs one at a time reparsing after
// each. Returns a ParseError carrying the raw reply when nothing works.
func ParseStructured(raw string) (map[string]any, error) {
	candidate := stripFences(raw)

	if doc, ok := tryParse(candidate); ok {
		return doc, nil
	}

	isolated, ok := isolateBraces(candidate)
	if !ok {
		return nil, &ParseError{Message: "no JSON object found in response", Raw: raw}
	}

	if doc, ok := tryParse(isolated); ok {
		return doc, nil
	}

	repairs := []func(string) string{
		removeTrailingCommas,
		insertMissingCommas,
		joinSplitStrings,
	}

	repaired := isolated
	for _, repair := range repairs {
		repaired = repair(repaired)
		if doc, ok := tryParse(repaired); ok {
			return doc, nil
		}
	}

	return nil, &ParseError{Message: "JSON repairs exhausted", Raw: raw}
}

// ParseStructuredAggressive extends ParseStructured with lossy repairs that
// quote bare keys and values. Used only where a wrong-but-parseable document
// beats no document.
func ParseStructuredAggressive(raw string) (map[string]any, error) {
	if doc, err := ParseStructured(raw); err == nil {
		return doc, nil
	}

	candidate := stripFences(raw)
	isolated, ok := isolateBraces(candidate)
	if !ok {
		return nil, &ParseError{Message: "no JSON object found in response", Raw: raw}
	}

	repaired := removeTrailingCommas(isolated)
	repaired = insertMissingCommas(repaired)
	repaired = joinSplitStrings(repaired)
	repaired = quoteBareKeys(repaired)
	repaired = quoteBareValues(repaired)

	if doc, ok := tryParse(repaired); ok {
		return doc, nil
	}

	return nil, &ParseError{Message: "aggressive JSON repairs exhausted", Raw: raw}
}

func tryParse(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &doc); err != nil {
		return nil, false
	}
	if doc == nil {
		return nil, false
	}
	return doc, true
}

// stripFences extracts the content of the first code fence, if any.
func stripFences(s string) string {
	if match := fenceRegex.FindStringSubmatch(s); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(s)
}

// isolateBraces returns the substring between the first '{' and the last '}'.
func isolateBraces(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func removeTrailingCommas(s string) string {
	return trailingCommaRegex.ReplaceAllString(s, "$1")
}

func insertMissingCommas(s string) string {
	return missingCommaRegex.ReplaceAllString(s, "},$1{")
}

func joinSplitStrings(s string) string {
	return splitStringRegex.ReplaceAllString(s, `",$1"`)
}

func quoteBareKeys(s string) string {
	return bareKeyRegex.ReplaceAllString(s, `$1"$2"$3`)
}

func quoteBareValues(s string) string {
	return bareValueRegex.ReplaceAllString(s, `$1"$2"$3`)
}

var (
	atsScoreRegex = regexp.MustCompile(`(?i)"?ats_score"?\s*:\s*(\d+)`)
	summaryRegex  = regexp.MustCompile(`(?i)"?summary"?\s*:\s*"([^"]+)"`)
	keywordRegex  = regexp.MustCompile(`"keyword"\s*:\s*"([^"]+)"`)
)

// FallbackAnalysis scrapes whatever analysis fragments survive in an
// unparseable reply. It never fails; absent fields get neutral defaults and
// the result is marked degraded.
func FallbackAnalysis(raw string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		ATSScore:               50,
		Summary:                "Analysis could not be fully parsed from the model response.",
		Strengths:              []string{},
		OptimizationPriorities: []string{},
		Recommendations:        []string{},
		Degraded:               true,
	}

	if match := atsScoreRegex.FindStringSubmatch(raw); match != nil {
		if score, err := strconv.Atoi(match[1]); err == nil {
			if score < 0 {
				score = 0
			}
			if score > 100 {
				score = 100
			}
			result.ATSScore = score
		}
	}

	if match := summaryRegex.FindStringSubmatch(raw); match != nil {
		result.Summary = match[1]
	}

	for _, match := range keywordRegex.FindAllStringSubmatch(raw, 10) {
		result.KeywordAnalysis.MatchedKeywords = append(
			result.KeywordAnalysis.MatchedKeywords,
			models.KeywordMatch{Keyword: match[1]},
		)
	}

	return result
}
