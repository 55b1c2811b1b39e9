package analyst_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/analyst"
)

const sampleCV = `Jane Smith
Senior Backend Engineer
jane.smith@example.com | San Francisco

Over 8 years of professional experience building distributed systems.

Experience:
- Led migration of monolith to Go microservices serving 2M users
- Reduced infrastructure costs by 40% through Kubernetes autoscaling
- Mentored junior developers on PostgreSQL and Redis usage
`

const sampleJD = `About Acme Robotics

Position: Staff Platform Engineer

We are looking for someone in Berlin or remote.

Requirements:
- 5+ years with Go and Kubernetes
- Experience with Kafka and PostgreSQL
- Strong CI/CD background
`

func TestExtractCandidateProfile(t *testing.T) {
	profile := analyst.ExtractCandidateProfile(sampleCV)

	require.Equal(t, "Jane Smith", profile.Name)
	require.Equal(t, "Senior Backend Engineer", profile.CurrentTitle)
	require.Equal(t, "8", profile.YearsExperience)
	require.Equal(t, "San Francisco", profile.Location)
	require.Contains(t, profile.TopSkills, "Go")
	require.Contains(t, profile.TopSkills, "Kubernetes")
	require.LessOrEqual(t, len(profile.TopSkills), 8)
	require.NotEmpty(t, profile.Achievements)
	require.LessOrEqual(t, len(profile.Achievements), 3)
}

func TestExtractCandidateProfile_EmptyInput(t *testing.T) {
	profile := analyst.ExtractCandidateProfile("")

	require.Equal(t, "Candidate", profile.Name)
	require.Equal(t, "Professional", profile.CurrentTitle)
	require.Empty(t, profile.TopSkills)
}

func TestExtractJobProfile(t *testing.T) {
	profile := analyst.ExtractJobProfile(sampleJD)

	require.Equal(t, "Staff Platform Engineer", profile.Position)
	require.Equal(t, "Acme Robotics", profile.Company)
	require.Equal(t, "Berlin", profile.Location)
	require.Contains(t, profile.Requirements, "Go")
	require.LessOrEqual(t, len(profile.Requirements), 10)
}

func TestExtractJobProfile_EmptyInput(t *testing.T) {
	profile := analyst.ExtractJobProfile("")

	require.Equal(t, "Target Company", profile.Company)
	require.Equal(t, "the open position", profile.Position)
	require.Equal(t, "Remote/Hybrid", profile.Location)
}
