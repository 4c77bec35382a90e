package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection.
var ErrCancelled = errors.New("selection cancelled")

// Selector is an arrow-key menu for picking reminders when a command is
// run without an id.
type Selector struct {
	question    string
	options     []reminder.Reminder
	selected    int
	multiSelect bool
	selections  map[int]bool
	colored     bool

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []reminder.Reminder, multiSelect bool, colored bool) *Selector {
	return &Selector{
		question:    question,
		options:     options,
		multiSelect: multiSelect,
		selections:  make(map[int]bool),
		colored:     colored,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run shows the menu and returns the ids of the chosen reminders.
func (s *Selector) Run() ([]int64, error) {
	if len(s.options) == 0 {
		return nil, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return s.runSimple(os.Stdin, os.Stdout)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple(os.Stdin, os.Stdout)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Print("\033[?25h") // Show cursor
	}()

	fmt.Print("\033[?25l")
	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(os.Stdin)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}

		done := false
		switch b {
		case 13, 10: // Enter
			done = true
		case 3, 'q': // Ctrl+C
			s.clearMenu(totalLines)
			return nil, ErrCancelled
		case 'j':
			s.moveDown()
		case 'k':
			s.moveUp()
		case ' ':
			if s.multiSelect {
				s.toggleSelection()
			} else {
				done = true
			}
		case 27: // Escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					s.moveUp()
				case 'B':
					s.moveDown()
				}
			}
		}

		s.clearMenu(totalLines)
		if done {
			return s.getSelected(), nil
		}
		s.printMenu()
	}
}

func (s *Selector) label(r reminder.Reminder) string {
	label := fmt.Sprintf("#%d %s", r.ID, r.Title)
	if r.IsManual() && r.DateStart != "" {
		label += " (" + strings.TrimSpace(r.DateStart+" "+r.Time) + ")"
	}
	return label
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	question := s.question
	hint := "[j/k or arrows] move  [enter] select  [q] cancel"
	if s.multiSelect {
		hint = "[j/k or arrows] move  [space] toggle  [enter] confirm  [q] cancel"
	}
	if s.colored {
		question = s.questionStyle.Render(question)
		hint = s.hintStyle.Render(hint)
	}
	sb.WriteString(question + "\r\n" + hint + "\r\n\r\n")

	for i, opt := range s.options {
		cursor := "  "
		if i == s.selected {
			cursor = "> "
		}

		checkbox := ""
		if s.multiSelect {
			checkbox = "[ ] "
			if s.selections[i] {
				checkbox = "[x] "
			}
		}

		label := s.label(opt)
		switch {
		case !s.colored:
			sb.WriteString(cursor + checkbox + label)
		case i == s.selected:
			sb.WriteString(s.cursorStyle.Render(cursor) + checkbox + s.selectedStyle.Render(label))
		default:
			sb.WriteString(cursor + checkbox + s.optionStyle.Render(label))
		}
		sb.WriteString("\r\n")
	}

	fmt.Print(sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Print("\033[A\033[2K\r")
	}
}

// runSimple is the numbered fallback for non-terminal input. Multiple
// numbers may be given separated by spaces or commas.
func (s *Selector) runSimple(in io.Reader, out io.Writer) ([]int64, error) {
	fmt.Fprintln(out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, s.label(opt))
	}
	fmt.Fprint(out, "Enter number: ")

	input, _ := bufio.NewReader(in).ReadString('\n')
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, ErrCancelled
	}
	if !s.multiSelect {
		fields = fields[:1]
	}

	var ids []int64
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(s.options) {
			return nil, fmt.Errorf("invalid choice %q", f)
		}
		ids = append(ids, s.options[n-1].ID)
	}
	return ids, nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}

func (s *Selector) toggleSelection() {
	s.selections[s.selected] = !s.selections[s.selected]
}

func (s *Selector) getSelected() []int64 {
	if s.multiSelect {
		var ids []int64
		for i, opt := range s.options {
			if s.selections[i] {
				ids = append(ids, opt.ID)
			}
		}
		if len(ids) > 0 {
			return ids
		}
	}
	return []int64{s.options[s.selected].ID}
}
