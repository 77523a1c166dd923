package memory

import (
	"fmt"
	"strings"
)

// FormatContextForPrompt composes the canonical three-section payload fed
// into the Planner's system prompt (spec §4.2): current mental state,
// recent activity, and known facts — the facts section is omitted
// entirely when there are none.
func (m *Manager) FormatContextForPrompt() (string, error) {
	now, err := m.ReadNow()
	if err != nil {
		return "", err
	}

	logTail, err := m.ReadLog(10)
	if err != nil {
		return "", err
	}

	facts, err := m.GetAllFacts("")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("=== CURRENT MENTAL STATE (Do not ignore) ===\n")
	b.WriteString(now)
	b.WriteString("\n\n=== RECENT ACTIVITY LOG ===\n")
	b.WriteString(logTail)

	if len(facts) > 0 {
		fmt.Fprintf(&b, "\n\n=== KNOWN USER FACTS ===\n%s", marshalMetadata(facts))
	}

	return b.String(), nil
}
