package docs

import (
	"fmt"
	"strings"
	"time"
)

// Template kinds selectable when starting a session.
const (
	TemplateStandard  = "standard"
	TemplateDebugging = "debugging"
	TemplateReview    = "review"
)

// KnownTemplate reports whether kind names a shipped template;
// unknown kinds fall back to the standard layout.
func KnownTemplate(kind string) bool {
	switch kind {
	case TemplateStandard, TemplateDebugging, TemplateReview:
		return true
	}
	return false
}

// DocumentHeader renders the top of a freshly created daily document.
func DocumentHeader(project, operator string, date time.Time) string {
	return fmt.Sprintf("# %s — work log\n\nDate: %s\nOperator: %s\n\n---\n",
		project, date.UTC().Format("2006-01-02"), operator)
}

// SessionStart renders the entry appended when a session begins.
func SessionStart(objective, kind string, startedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Session %s\n\n", startedAt.UTC().Format("15:04 MST"))
	fmt.Fprintf(&b, "**Objective:** %s\n", objective)
	switch kind {
	case TemplateDebugging:
		b.WriteString("\n**Symptom:**\n\n**Hypotheses:**\n\n**Findings:**\n")
	case TemplateReview:
		b.WriteString("\n**Scope:**\n\n**Issues raised:**\n")
	}
	return b.String()
}

// Activity renders a single logged activity line.
func Activity(at time.Time, text string) string {
	return fmt.Sprintf("- %s %s\n", at.UTC().Format("15:04"), text)
}

// SessionEnd renders the closing summary appended by end.
func SessionEnd(summary string, endedAt time.Time) string {
	return fmt.Sprintf("\n**Ended %s.** %s\n\n---\n",
		endedAt.UTC().Format("15:04 MST"), summary)
}
