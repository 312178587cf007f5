package policydiff

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders the diff result as human-readable text.
func FormatText(r *DiffResult) string {
	if !r.HasChanges {
		return fmt.Sprintf("Policy diff: %s → %s\n\nNo changes detected.\n", r.OldPath, r.NewPath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Policy diff: %s → %s\n", r.OldPath, r.NewPath)

	var ceilings, attrs []Change
	for _, c := range r.Changes {
		if strings.HasPrefix(c.Field, "ceilings.") {
			ceilings = append(ceilings, c)
		} else {
			attrs = append(attrs, c)
		}
	}

	if len(ceilings) > 0 {
		b.WriteString("\n  Risk ceilings:\n")
		for _, c := range ceilings {
			name := strings.ToUpper(strings.TrimPrefix(c.Field, "ceilings."))
			fmt.Fprintf(&b, "    %-6s %s → %s  (%s)\n", name+":", c.Old, c.New, c.Comment)
		}
	}

	if len(attrs) > 0 {
		b.WriteString("\n")
		for _, c := range attrs {
			fmt.Fprintf(&b, "  %-24s %q → %q\n", c.Field+":", c.Old, c.New)
		}
	}

	return b.String()
}

// FormatJSON renders the diff result as JSON.
func FormatJSON(r *DiffResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal diff result: %w", err)
	}
	return string(data), nil
}
