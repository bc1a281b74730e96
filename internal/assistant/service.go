// Package assistant implements the career guidance conversation flow:
// intent classification, field resolution, role and roadmap lookup, skill
// extraction, and the per-turn orchestration that ties them together.
package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pavanbh/career-oracle/internal/llm"
)

// Service wraps the stateless model operations. Every method issues at most
// one remote call and applies the same fail-safe discipline: a remote
// failure degrades to a neutral result instead of propagating.
type Service struct {
	gen llm.Generator
}

// NewService creates a Service over the given generator.
func NewService(gen llm.Generator) *Service {
	return &Service{gen: gen}
}

// IsCareerRelated classifies an utterance as a career-guidance request.
// The model answers 'Yes' or 'No'; anything that does not begin with "yes"
// after trimming and lower-casing counts as false, errors included.
// Fails closed: a mis-classified non-career query would otherwise trigger a
// misleading multi-step flow.
func (s *Service) IsCareerRelated(ctx context.Context, utterance string) bool {
	out, err := s.gen.Generate(ctx, classifierPrompt(utterance))
	if err != nil {
		slog.Warn("intent classification failed, treating as off-topic", "error", err)
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "yes")
}

// ResolveField extracts a short canonical field-of-interest label from the
// utterance. Returns "" if the model declines or the call fails; callers
// treat an empty field as a short-circuit, not an error.
func (s *Service) ResolveField(ctx context.Context, utterance string) string {
	out, err := s.gen.Generate(ctx, fieldPrompt(utterance))
	if err != nil {
		slog.Warn("field resolution failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}
