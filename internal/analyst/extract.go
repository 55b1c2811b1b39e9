package analyst

import (
	"regexp"
	"strings"

	"cvforge/pkg/models"
)

// techVocabulary is the skill lexicon scanned for in raw CV text. Matching is
// case-insensitive on word boundaries.
var techVocabulary = []string{
	"Python", "Go", "Java", "JavaScript", "TypeScript", "C++", "C#", "Rust",
	"Ruby", "PHP", "Swift", "Kotlin", "Scala", "SQL", "React", "Angular",
	"Vue", "Node.js", "Django", "Flask", "Spring", "Rails", "Docker",
	"Kubernetes", "Terraform", "AWS", "Azure", "GCP", "PostgreSQL", "MySQL",
	"MongoDB", "Redis", "Kafka", "RabbitMQ", "Elasticsearch", "GraphQL",
	"REST", "gRPC", "CI/CD", "Git", "Linux", "Machine Learning", "TensorFlow",
	"PyTorch", "Pandas", "Spark",
}

// knownCities anchors location extraction for common tech hubs.
var knownCities = []string{
	"San Francisco", "New York", "London", "Berlin", "Amsterdam", "Paris",
	"Toronto", "Vancouver", "Sydney", "Melbourne", "Singapore", "Bangalore",
	"Bengaluru", "Mumbai", "Delhi", "Hyderabad", "Pune", "Austin", "Seattle",
	"Boston", "Chicago", "Dublin", "Zurich", "Munich", "Tokyo", "Remote",
}

var (
	yearsExpRegex  = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?(?:\s+of)?\s+(?:professional\s+|work\s+|industry\s+)?experience`)
	emailLineRegex = regexp.MustCompile(`\S+@\S+`)
	titleWordRegex = regexp.MustCompile(`(?i)\b(engineer|developer|manager|analyst|designer|architect|consultant|scientist|lead|director|specialist|administrator)\b`)
	companyRegex   = regexp.MustCompile(`(?i)\b(?:at|join|about)[ \t]+([A-Z][A-Za-z0-9&.]+(?:[ \t]+[A-Z][A-Za-z0-9&.]+){0,2})`)
	positionRegex  = regexp.MustCompile(`(?im)^(?:position|role|job title)\s*[:\-]\s*(.+)$`)
	bulletRegex    = regexp.MustCompile(`(?m)^\s*[-*•]\s*(.+)$`)
	numberedRegex  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+)$`)
	digitRegex     = regexp.MustCompile(`\d`)
)

// ExtractCandidateProfile derives a candidate profile from raw CV text using
// lexical heuristics. It never fails; fields that cannot be derived get
// generic values so downstream prompts always have something to work with.
func ExtractCandidateProfile(cvText string) *models.CandidateProfile {
	profile := &models.CandidateProfile{
		Name:         "Candidate",
		CurrentTitle: "Professional",
	}

	lines := nonEmptyLines(cvText)

	// First short non-contact line is usually the name
	for _, line := range lines {
		if len(line) <= 60 && !emailLineRegex.MatchString(line) && !strings.ContainsAny(line, "|,:") {
			profile.Name = line
			break
		}
	}

	// First line that reads like a job title
	for _, line := range lines {
		if line == profile.Name {
			continue
		}
		if len(line) <= 80 && titleWordRegex.MatchString(line) {
			profile.CurrentTitle = line
			break
		}
	}

	if match := yearsExpRegex.FindStringSubmatch(cvText); match != nil {
		profile.YearsExperience = match[1]
	}

	profile.Location = findCity(cvText)

	profile.TopSkills = matchVocabulary(cvText, 8)

	// Achievement-flavored bullets: quantified or outcome verbs
	for _, bullet := range extractBullets(cvText) {
		if len(profile.Achievements) >= 3 {
			break
		}
		if looksLikeAchievement(bullet) {
			profile.Achievements = append(profile.Achievements, bullet)
		}
	}

	return profile
}

// ExtractJobProfile derives a job profile from raw job description text.
// It never fails; missing fields get generic values.
func ExtractJobProfile(jobDescription string) *models.JobProfile {
	profile := &models.JobProfile{
		Company:  "Target Company",
		Position: "the open position",
		Location: "Remote/Hybrid",
	}

	if match := positionRegex.FindStringSubmatch(jobDescription); match != nil {
		profile.Position = strings.TrimSpace(match[1])
	} else {
		for _, line := range nonEmptyLines(jobDescription) {
			if len(line) <= 80 && titleWordRegex.MatchString(line) {
				profile.Position = line
				break
			}
		}
	}

	if match := companyRegex.FindStringSubmatch(jobDescription); match != nil {
		profile.Company = strings.TrimSpace(match[1])
	}

	if city := findCity(jobDescription); city != "" {
		profile.Location = city
	}

	requirements := matchVocabulary(jobDescription, 10)
	for _, bullet := range extractBullets(jobDescription) {
		if len(requirements) >= 10 {
			break
		}
		if len(bullet) <= 120 {
			requirements = append(requirements, bullet)
		}
	}
	profile.Requirements = requirements

	return profile
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func findCity(text string) string {
	lower := strings.ToLower(text)
	for _, city := range knownCities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

func matchVocabulary(text string, limit int) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, skill := range techVocabulary {
		if len(matched) >= limit {
			break
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}
	return matched
}

func extractBullets(text string) []string {
	var bullets []string
	for _, match := range bulletRegex.FindAllStringSubmatch(text, -1) {
		bullets = append(bullets, strings.TrimSpace(match[1]))
	}
	for _, match := range numberedRegex.FindAllStringSubmatch(text, -1) {
		bullets = append(bullets, strings.TrimSpace(match[1]))
	}
	return bullets
}

var achievementVerbRegex = regexp.MustCompile(`(?i)\b(led|built|launched|reduced|increased|improved|delivered|scaled|migrated|designed|automated|saved)\b`)

func looksLikeAchievement(bullet string) bool {
	return digitRegex.MatchString(bullet) || achievementVerbRegex.MatchString(bullet)
}
