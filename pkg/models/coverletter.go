package models

// CandidateProfile carries the candidate facts fed into cover letter generation.
// Fields are best-effort extractions and may hold generic placeholders.
type CandidateProfile struct {
	Name            string   `json:"name"`
	CurrentTitle    string   `json:"current_title"`
	Location        string   `json:"location"`
	YearsExperience string   `json:"years_exp"`
	TopSkills       []string `json:"top_skills"`
	Achievements    []string `json:"achievements"`
}

// JobProfile carries the target-job facts fed into cover letter generation
type JobProfile struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	Requirements []string `json:"requirements"`
}

// CoverLetter is the generated cover letter document. WordCount is computed
// locally when the model omits it; ToneMatched defaults to true.
type CoverLetter struct {
	CoverLetter string `json:"cover_letter"`
	WordCount   int    `json:"word_count"`
	ToneMatched bool   `json:"tone_matched"`
}
