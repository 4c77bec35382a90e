package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var severityColors = map[Severity]lipgloss.Color{
	SeverityInfo:    lipgloss.Color("81"),  // Bright cyan
	SeverityWarning: lipgloss.Color("222"), // Warm yellow
	SeveritySuccess: lipgloss.Color("114"), // Soft green
}

// TerminalSink draws notices as bordered boxes on a writer. In the
// interactive shell the writer is readline's stdout so the prompt is
// redrawn below the notice.
type TerminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	colored bool
}

func NewTerminalSink(out io.Writer, colored bool) *TerminalSink {
	return &TerminalSink{out: out, colored: colored}
}

// SetWriter swaps the output, e.g. once the shell has started.
func (t *TerminalSink) SetWriter(out io.Writer) {
	t.mu.Lock()
	t.out = out
	t.mu.Unlock()
}

func (t *TerminalSink) Show(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.render(n))
}

func (t *TerminalSink) render(n Notice) string {
	if !t.colored {
		return fmt.Sprintf("[%s] %s: %s", n.Severity, n.Title, n.Message)
	}

	color, ok := severityColors[n.Severity]
	if !ok {
		color = severityColors[SeverityInfo]
	}

	title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(n.Title)
	body := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Render(n.Message)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(title + "\n" + body)
}
