package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/ledger-reminders/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Reminder states shown in listings.
const (
	StateUnread    = "unread"
	StateRead      = "read"
	StateScheduled = "scheduled"
	StateInvalid   = "invalid date"
)

type Formatter struct {
	colored bool
	loc     *time.Location
}

func NewFormatter(colored bool, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{colored: colored, loc: loc}
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatStatus(msg string) string {
	if f.colored {
		return StatusStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatSuccess(msg string) string {
	if f.colored {
		return SuccessStyle.Render("✓ ") + msg
	}
	return "✓ " + msg
}

// FormatUnread renders the badge count.
func (f *Formatter) FormatUnread(count int) string {
	msg := fmt.Sprintf("%d unread", count)
	if count == 0 {
		msg = "No unread reminders"
	}
	if f.colored && count > 0 {
		return WarningBadge.Render(msg)
	}
	return f.FormatInfo(msg)
}

var WarningBadge = lipgloss.NewStyle().
	Foreground(lipgloss.Color("232")).
	Background(lipgloss.Color("222")).
	Padding(0, 1).
	Bold(true)

// ReminderState classifies r for display at now.
func ReminderState(r reminder.Reminder, now time.Time, loc *time.Location) string {
	if r.IsManual() {
		if _, ok := r.ScheduledAt(loc); !ok {
			return StateInvalid
		}
		if !r.DueBy(now, loc) {
			return StateScheduled
		}
	}
	if r.IsRead {
		return StateRead
	}
	return StateUnread
}

// RemindersMarkdown renders the list as a markdown table.
func RemindersMarkdown(list []reminder.Reminder, now time.Time, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("| ID | Category | Title | Due | State |\n")
	sb.WriteString("|---:|---|---|---|---|\n")

	for _, r := range list {
		due := "-"
		if r.IsManual() {
			due = strings.TrimSpace(r.DateStart + " " + r.Time)
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			r.ID, r.Category, escapeCell(r.Title), escapeCell(due), ReminderState(r, now, loc))
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// FormatReminders renders the list through glamour when colours are on,
// falling back to the raw markdown table.
func (f *Formatter) FormatReminders(title string, list []reminder.Reminder, now time.Time) string {
	if len(list) == 0 {
		return f.FormatInfo("No reminders.")
	}

	md := "## " + title + "\n\n" + RemindersMarkdown(list, now, f.loc)
	if !f.colored {
		return md
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (f *Formatter) FormatWelcome(online bool, unread int) string {
	state := "online"
	if !online {
		state = "offline, showing cached reminders"
	}

	if !f.colored {
		return strings.Join([]string{
			"",
			"Ledger Reminders",
			"Server: " + state,
			f.FormatUnread(unread),
			"Type /help for commands",
			"",
		}, "\n")
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	if !online {
		valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	}

	body := strings.Join([]string{
		HeaderStyle.Render("Ledger Reminders"),
		labelStyle.Render("Server: ") + valueStyle.Render(state),
		f.FormatUnread(unread),
		"",
		StatusStyle.Render("Type /help for commands"),
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Render(body)

	return "\n" + box + "\n"
}

type command struct {
	name, desc string
}

var shellCommands = []command{
	{"/list", "Show active reminders"},
	{"/all", "Show every reminder, including scheduled ones"},
	{"/unread", "Show the unread count"},
	{"/add <title> | <YYYY-MM-DD> | <HH:MM>", "Schedule a reminder"},
	{"/read <id>", "Mark a reminder as read"},
	{"/readall", "Mark all reminders as read"},
	{"/delete <id>", "Delete a reminder"},
	{"/clear", "Delete everything except future scheduled reminders"},
	{"/refresh", "Refetch from the server"},
	{"/help", "Show this help"},
	{"/quit", "Exit"},
}

func (f *Formatter) FormatHelp() string {
	width := 0
	for _, c := range shellCommands {
		if len(c.name) > width {
			width = len(c.name)
		}
	}

	lines := []string{"", "Commands:"}
	if f.colored {
		lines[1] = HeaderStyle.Render("Commands")
	}

	cmdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	for _, c := range shellCommands {
		name := fmt.Sprintf("%-*s", width, c.name)
		if f.colored {
			lines = append(lines, "  "+cmdStyle.Render(name)+"  "+c.desc)
		} else {
			lines = append(lines, "  "+name+"  "+c.desc)
		}
	}

	tip := "  Ctrl+C or Ctrl+D to exit"
	if f.colored {
		tip = DimStyle.Render(tip)
	}
	lines = append(lines, "", tip, "")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns the shell prompt with the unread badge.
func (f *Formatter) FormatPrompt(unread int) string {
	label := "reminders"
	if unread > 0 {
		label = fmt.Sprintf("reminders (%d)", unread)
	}
	if f.colored {
		promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
		arrowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
		return promptStyle.Render(label) + arrowStyle.Render(" > ")
	}
	return label + " > "
}
