package diag

import (
	"fmt"
	"strings"
)

// formatCaret renders message with the offending source line and a caret
// pointing at pos, in the style "  --> line N:C".
func formatCaret(message string, pos Position, source string) string {
	lines := strings.Split(source, "\n")
	lineNum := pos.Line
	if lineNum < 1 || lineNum > len(lines) {
		return message
	}

	line := lines[lineNum-1]
	col := pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}
