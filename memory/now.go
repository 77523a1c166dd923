package memory

import (
	"fmt"
	"os"
	"strings"
)

// UpdateNow overwrites NOW.md with a canonical layout and appends a
// SYSTEM log line describing the change (spec §4.2).
func (m *Manager) UpdateNow(status string, nextSteps []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Current Status\n\n")
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Updated: %s\n", nowISO())
	if len(nextSteps) > 0 {
		b.WriteString("\n## Next Steps\n")
		for _, step := range nextSteps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}

	if err := atomicWrite(m.nowPath(), b.String()); err != nil {
		return err
	}

	return m.appendLogLocked("SYSTEM", fmt.Sprintf("Updated status: %s", status), nil)
}

// ReadNow returns the raw NOW.md contents.
func (m *Manager) ReadNow() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.nowPath())
	if err != nil {
		return "", fmt.Errorf("memory: read %s: %w", m.nowPath(), err)
	}
	return string(raw), nil
}
