package recovery

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder values used when a model omits required resume fields.
const (
	placeholderName        = "Candidate"
	placeholderTitle       = "Professional"
	placeholderDescription = "Experienced professional."
	placeholderEmail       = "candidate@example.com"
	placeholderField       = "None Provided"
	placeholderFieldEmail  = "none@example.com"
	placeholderUnknown     = "Unknown"
	placeholderTask        = "Responsible for core duties."
)

var (
	markdownLinkRegex    = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	markdownBracketRegex = regexp.MustCompile(`\[([^\]]*)\]`)
)

// CleanMarkdownArtifacts strips markdown link syntax from every string in a
// document, recursing through maps and lists. Non-string leaves pass through
// untouched.
func CleanMarkdownArtifacts(value any) any {
	switch v := value.(type) {
	case string:
		cleaned := markdownLinkRegex.ReplaceAllString(v, "$1")
		cleaned = markdownBracketRegex.ReplaceAllString(cleaned, "$1")
		return cleaned
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = CleanMarkdownArtifacts(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = CleanMarkdownArtifacts(val)
		}
		return out
	default:
		return value
	}
}

// SanitizeResume normalizes a recovered resume document so it always decodes
// into the resume model. It is total (never fails, any input map produces a
// valid document) and idempotent (sanitizing twice equals sanitizing once).
func SanitizeResume(doc map[string]any) map[string]any {
	if doc == nil {
		doc = map[string]any{}
	}

	cleaned, _ := CleanMarkdownArtifacts(doc).(map[string]any)
	if cleaned == nil {
		cleaned = map[string]any{}
	}

	out := map[string]any{}

	out["user_information"] = sanitizeUserInformation(cleaned["user_information"])
	out["projects"] = sanitizeMapList(cleaned["projects"])
	out["certificate"] = sanitizeMapList(cleaned["certificate"])
	out["extra_curricular_activities"] = sanitizeMapList(cleaned["extra_curricular_activities"])

	return out
}

func sanitizeUserInformation(value any) map[string]any {
	info, ok := value.(map[string]any)
	if !ok {
		// Whole section missing, synthesize a minimal identity
		return map[string]any{
			"name":                placeholderName,
			"main_job_title":      placeholderTitle,
			"profile_description": placeholderDescription,
			"email":               placeholderEmail,
			"experiences":         []any{},
			"education":           []any{},
			"skills": map[string]any{
				"hard_skills": []any{},
				"soft_skills": []any{},
			},
		}
	}

	out := map[string]any{}
	out["name"] = stringOr(info["name"], placeholderField)
	out["main_job_title"] = stringOr(info["main_job_title"], placeholderField)
	out["profile_description"] = stringOr(info["profile_description"], placeholderField)
	out["email"] = stringOr(info["email"], placeholderFieldEmail)
	out["experiences"] = sanitizeExperiences(info["experiences"])
	out["education"] = sanitizeEducation(info["education"])
	out["skills"] = sanitizeSkills(info["skills"])

	return out
}

func sanitizeExperiences(value any) []any {
	entries, ok := value.([]any)
	if !ok {
		return []any{}
	}

	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		exp, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		sanitized := map[string]any{
			"job_title":  stringOr(exp["job_title"], placeholderUnknown),
			"company":    stringOr(exp["company"], placeholderUnknown),
			"start_date": stringOr(exp["start_date"], placeholderUnknown),
			"end_date":   stringOr(exp["end_date"], placeholderUnknown),
			"four_tasks": sanitizeStringList(exp["four_tasks"]),
		}
		if len(sanitized["four_tasks"].([]any)) == 0 {
			sanitized["four_tasks"] = []any{placeholderTask}
		}
		out = append(out, sanitized)
	}
	return out
}

func sanitizeEducation(value any) []any {
	entries, ok := value.([]any)
	if !ok {
		return []any{}
	}

	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		edu, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"institution": stringOr(edu["institution"], placeholderUnknown),
			"degree":      stringOr(edu["degree"], placeholderUnknown),
			"start_date":  stringOr(edu["start_date"], placeholderUnknown),
			"end_date":    stringOr(edu["end_date"], placeholderUnknown),
		})
	}
	return out
}

func sanitizeSkills(value any) map[string]any {
	skills, ok := value.(map[string]any)
	if !ok {
		return map[string]any{
			"hard_skills": []any{},
			"soft_skills": []any{},
		}
	}
	return map[string]any{
		"hard_skills": sanitizeStringList(skills["hard_skills"]),
		"soft_skills": sanitizeStringList(skills["soft_skills"]),
	}
}

// sanitizeStringList stringifies list elements, dropping nils.
func sanitizeStringList(value any) []any {
	entries, ok := value.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if s, ok := entry.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(entry))
	}
	return out
}

// sanitizeMapList keeps only map entries of a list.
func sanitizeMapList(value any) []any {
	entries, ok := value.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		if m, ok := entry.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringOr(value any, fallback string) string {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
