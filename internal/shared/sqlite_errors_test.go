package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSQLiteConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"busy", errors.New("SQLITE_BUSY: database table is locked"), true},
		{"locked", errors.New("database is locked (5)"), true},
		{"wrapped busy", fmt.Errorf("delete session: %w", errors.New("SQLITE_BUSY")), true},
		{"unrelated", errors.New("no such table: turns"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSQLiteConflict(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
