package plan

import (
	"fmt"
	"strings"
)

// FormatChanges renders a change list for humans, one change per line.
func FormatChanges(from, to string, changes []FieldChange) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== %s -> %s ===\n", from, to))

	if len(changes) == 0 {
		sb.WriteString("no differences\n")
		return sb.String()
	}

	for _, c := range changes {
		sb.WriteString("  ")
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("%d change(s)\n", len(changes)))

	return sb.String()
}
