package assistant

import (
	"context"
	"log/slog"
	"strings"
)

// ExtractSkills pulls professional skills out of resume text. The model
// returns a comma-separated list; tokens are trimmed, empties dropped, and
// duplicates removed preserving first occurrence. Any remote failure yields
// an empty list.
func (s *Service) ExtractSkills(ctx context.Context, resumeText string) []string {
	if strings.TrimSpace(resumeText) == "" {
		return nil
	}

	out, err := s.gen.Generate(ctx, skillsPrompt(resumeText))
	if err != nil {
		slog.Warn("skill extraction failed", "error", err)
		return nil
	}
	return ParseSkills(out)
}

// ParseSkills normalizes a comma-separated skill response into an ordered,
// deduplicated skill list. Idempotent on identical input.
func ParseSkills(raw string) []string {
	var skills []string
	seen := make(map[string]struct{})
	for _, token := range strings.Split(raw, ",") {
		skill := strings.TrimSpace(token)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}

// CareerPaths generates free-form prose describing career paths and job
// roles for a skill list. Failures degrade to an empty string.
func (s *Service) CareerPaths(ctx context.Context, skills []string) string {
	out, err := s.gen.Generate(ctx, careerPathsPrompt(skills))
	if err != nil {
		slog.Warn("career path generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}
