package models

// KeywordMatch represents a keyword found in both the job description and the CV
type KeywordMatch struct {
	Keyword    string `json:"keyword"`
	JDMentions int    `json:"jd_mentions"`
	CVMentions int    `json:"cv_mentions"`
}

// MissingKeyword represents a keyword present in the job description but absent from the CV
type MissingKeyword struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"` // "high", "medium", "low"
}

// KeywordAnalysis groups the keyword overlap between a CV and a job description
type KeywordAnalysis struct {
	MatchedKeywords   []KeywordMatch   `json:"matched_keywords"`
	MissingCritical   []MissingKeyword `json:"missing_critical"`
	MissingNiceToHave []MissingKeyword `json:"missing_nice_to_have"`
}

// ExperienceAnalysis describes how the candidate's roles map onto the target job
type ExperienceAnalysis struct {
	RelevantRoles     []string `json:"relevant_roles"`
	TransferableRoles []string `json:"transferable_roles"`
}

// SkillGaps buckets missing skills by how much they matter for the target job
type SkillGaps struct {
	Critical   []string `json:"critical"`
	Important  []string `json:"important"`
	NiceToHave []string `json:"nice_to_have"`
}

// EducationRelevance lists the parts of the candidate's education that apply to the job
type EducationRelevance struct {
	RelevantDegrees        []string `json:"relevant_degrees"`
	RelevantCertifications []string `json:"relevant_certifications"`
}

// AnalysisResult is the full output of analyzing a CV against a job description.
// ATSScore is a keyword-overlap compatibility score in [0,100].
type AnalysisResult struct {
	ATSScore               int                `json:"ats_score"`
	Summary                string             `json:"summary"`
	KeywordAnalysis        KeywordAnalysis    `json:"keyword_analysis"`
	ExperienceAnalysis     ExperienceAnalysis `json:"experience_analysis"`
	SkillGaps              SkillGaps          `json:"skill_gaps"`
	Strengths              []string           `json:"strengths"`
	EducationRelevance     EducationRelevance `json:"education_relevance"`
	OptimizationPriorities []string           `json:"optimization_priorities"`
	Recommendations        []string           `json:"recommendations"`

	// Degraded is set when the result was recovered through the regex fallback
	// parser rather than a clean JSON parse.
	Degraded bool `json:"degraded,omitempty"`
}

// MatchedSkillNames flattens the matched keyword list into plain skill names
func (a *AnalysisResult) MatchedSkillNames() []string {
	names := make([]string, 0, len(a.KeywordAnalysis.MatchedKeywords))
	for _, kw := range a.KeywordAnalysis.MatchedKeywords {
		if kw.Keyword != "" {
			names = append(names, kw.Keyword)
		}
	}
	return names
}

// MissingSkillNames flattens the missing-critical keyword list into plain skill names
func (a *AnalysisResult) MissingSkillNames() []string {
	names := make([]string, 0, len(a.KeywordAnalysis.MissingCritical))
	for _, kw := range a.KeywordAnalysis.MissingCritical {
		if kw.Keyword != "" {
			names = append(names, kw.Keyword)
		}
	}
	return names
}
