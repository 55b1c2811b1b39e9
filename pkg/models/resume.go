package models

import "encoding/json"

// Experience represents a single work experience entry in an optimized resume
type Experience struct {
	JobTitle  string   `json:"job_title"`
	Company   string   `json:"company"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	FourTasks []string `json:"four_tasks"`
}

// Education represents a single education entry in an optimized resume
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Skills splits the candidate's skills into hard and soft categories
type Skills struct {
	HardSkills []string `json:"hard_skills"`
	SoftSkills []string `json:"soft_skills"`
}

// UserInformation holds the mandatory core of an optimized resume. After
// sanitization every string field is non-empty and every experience carries at
// least one task.
type UserInformation struct {
	Name               string       `json:"name"`
	MainJobTitle       string       `json:"main_job_title"`
	ProfileDescription string       `json:"profile_description"`
	Email              string       `json:"email"`
	Experiences        []Experience `json:"experiences"`
	Education          []Education  `json:"education"`
	Skills             Skills       `json:"skills"`
}

// OptimizedResume is the strict document shape produced by the comprehensive
// optimizer after sanitization. It is the unit persisted and rendered to PDF.
type OptimizedResume struct {
	UserInformation UserInformation  `json:"user_information"`
	Projects        []map[string]any `json:"projects,omitempty"`
	Certificates    []map[string]any `json:"certificate,omitempty"`
	ExtraCurricular []map[string]any `json:"extra_curricular_activities,omitempty"`
}

// DecodeOptimizedResume converts a sanitized generic mapping into the typed
// document. It is only safe to call on sanitizer output; raw LLM mappings must
// go through the sanitizer first.
func DecodeOptimizedResume(data map[string]any) (*OptimizedResume, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc OptimizedResume
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SectionOptimization is the result of optimizing a single CV section
type SectionOptimization struct {
	OptimizedContent string   `json:"optimized_content"`
	ChangesMade      []string `json:"changes_made"`
	KeywordsUsed     []string `json:"keywords_used"`
}
