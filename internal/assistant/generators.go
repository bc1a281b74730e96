package assistant

import (
	"context"
	"log/slog"
	"strings"
)

// RolesFor returns free-text job roles relevant to a field. An empty or
// failed generation substitutes the fixed fallback literal.
func (s *Service) RolesFor(ctx context.Context, field string) string {
	out, err := s.gen.Generate(ctx, rolesPrompt(field))
	if err != nil {
		slog.Warn("role lookup failed", "field", field, "error", err)
		return RolesFallback
	}
	roles := strings.TrimSpace(out)
	if roles == "" {
		return RolesFallback
	}
	return roles
}

// RoadmapFor returns an ordered list of roadmap steps for a field. The
// response is split on line breaks; each non-empty line is one step,
// verbatim. Numbering artifacts from the model pass through unchanged.
// A failed call yields no steps, which downstream suppresses the flowchart.
func (s *Service) RoadmapFor(ctx context.Context, field string) []string {
	out, err := s.gen.Generate(ctx, roadmapPrompt(field))
	if err != nil {
		slog.Warn("roadmap lookup failed", "field", field, "error", err)
		return nil
	}

	var steps []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}
