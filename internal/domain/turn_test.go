package domain

import "testing"

func TestNewTextTurn(t *testing.T) {
	turn := NewTextTurn(RoleUser, "hello")

	if turn.ID == "" {
		t.Error("Expected generated turn ID")
	}
	if turn.Role != RoleUser || turn.Kind != TurnKindText {
		t.Errorf("Unexpected role/kind: %s/%s", turn.Role, turn.Kind)
	}
	if turn.Text != "hello" {
		t.Errorf("Unexpected text: %q", turn.Text)
	}
	if turn.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestNewFlowchartTurn(t *testing.T) {
	steps := []string{"Learn SQL", "Learn Python"}
	turn := NewFlowchartTurn(steps)

	if turn.Role != RoleAssistant {
		t.Errorf("Expected assistant role, got %s", turn.Role)
	}
	if turn.Kind != TurnKindFlowchart {
		t.Errorf("Expected flowchart kind, got %s", turn.Kind)
	}
	if len(turn.Steps) != 2 {
		t.Errorf("Expected 2 steps, got %d", len(turn.Steps))
	}
	if turn.Text != "" {
		t.Errorf("Expected no text payload, got %q", turn.Text)
	}
}

func TestTurnIDsUnique(t *testing.T) {
	a := NewTextTurn(RoleUser, "one")
	b := NewTextTurn(RoleUser, "two")
	if a.ID == b.ID {
		t.Error("Expected distinct turn IDs")
	}
}
