package agent

import "fmt"

// formatFinding renders a one-line, human-readable insight from a raw tool
// finding: "<label>: <value>".
func formatFinding(label string, value any) string {
	return fmt.Sprintf("%s: %v", label, value)
}
