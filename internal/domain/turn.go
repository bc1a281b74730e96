// Package domain contains core domain types for the Career Oracle application.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnKind identifies the payload carried by a transcript turn.
type TurnKind string

const (
	// TurnKindText is a markdown text payload.
	TurnKindText TurnKind = "text"
	// TurnKindFlowchart is an ordered list of roadmap steps rendered as a
	// linear node-and-edge diagram instead of prose.
	TurnKindFlowchart TurnKind = "flowchart"
)

// Turn is one message in a conversation transcript. Turns are append-only:
// once written to a transcript they are never mutated.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      TurnKind  `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Steps     []string  `json:"steps,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTextTurn creates a markdown text turn for the given role.
func NewTextTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      TurnKindText,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewFlowchartTurn creates an assistant turn carrying ordered roadmap steps.
func NewFlowchartTurn(steps []string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Kind:      TurnKindFlowchart,
		Steps:     steps,
		CreatedAt: time.Now().UTC(),
	}
}
