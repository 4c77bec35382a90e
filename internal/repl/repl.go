// Package repl is the interactive shell of watch mode.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"github.com/notexe/ledger-reminders/internal/ui"
)

// Store is the reminder store as seen by the shell.
type Store interface {
	FetchAll(ctx context.Context, triggerPopups bool)
	Now() time.Time
	List() []reminder.Reminder
	ActiveList() []reminder.Reminder
	UnreadCount() int
	MarkRead(ctx context.Context, id int64)
	MarkAllRead(ctx context.Context)
	AddManual(ctx context.Context, req reminder.CreateRequest) reminder.AddResult
	DeleteOne(ctx context.Context, id int64) bool
	DeleteAllManual(ctx context.Context) bool
}

type REPL struct {
	store     Store
	formatter *ui.Formatter
	status    *ui.StatusDisplay
	online    func() bool
	rl        *readline.Instance
	out       io.Writer
}

// NewREPL creates the shell. online reports server reachability for the
// welcome banner and may be nil.
func NewREPL(store Store, formatter *ui.Formatter, online func() bool) (*REPL, error) {
	rl, err := setupReadline(formatter.FormatPrompt(store.UnreadCount()))
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(store, formatter, online, rl.Stdout())
	r.rl = rl
	return r, nil
}

func newREPL(store Store, formatter *ui.Formatter, online func() bool, out io.Writer) *REPL {
	if online == nil {
		online = func() bool { return true }
	}
	if out == nil {
		out = os.Stdout
	}
	return &REPL{
		store:     store,
		formatter: formatter,
		status:    ui.NewStatusDisplay(formatter, out, true),
		online:    online,
		out:       out,
	}
}

// Stdout is the writer that keeps the prompt intact. Popups in watch
// mode go through it.
func (r *REPL) Stdout() io.Writer {
	return r.out
}

// Start reads commands until /quit, EOF, Ctrl+C or ctx cancellation.
func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.rl.Close()
		case <-done:
		}
	}()

	r.displayWelcome()

	for {
		r.rl.SetPrompt(r.formatter.FormatPrompt(r.store.UnreadCount()))

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) || ctx.Err() != nil {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := parseCommand(input)
		if !isCommand {
			r.displayInfo("Commands start with /, type /help for the list.")
			continue
		}

		quit, err := r.handleCommand(ctx, command, args)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

// handleCommand runs one shell command and reports whether to exit.
func (r *REPL) handleCommand(ctx context.Context, command, args string) (bool, error) {
	switch command {
	case "/help", "/h":
		r.displayHelp()

	case "/list", "/l":
		r.displayList("Reminders", false)

	case "/all":
		r.displayList("All reminders", true)

	case "/unread", "/u":
		r.displayUnread()

	case "/add", "/a":
		req, err := parseAdd(args)
		if err != nil {
			return false, err
		}
		res := r.store.AddManual(ctx, req)
		if !res.Success {
			return false, res.Err
		}

	case "/read", "/r":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		r.store.MarkRead(ctx, id)
		r.displaySystem(fmt.Sprintf("Reminder #%d marked as read.", id))

	case "/readall":
		r.store.MarkAllRead(ctx)
		r.displaySystem("All reminders marked as read.")

	case "/delete", "/d":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		if !r.store.DeleteOne(ctx, id) {
			return false, fmt.Errorf("failed to delete reminder #%d", id)
		}
		r.displaySuccess(fmt.Sprintf("Reminder #%d deleted.", id))

	case "/clear", "/c":
		if !r.store.DeleteAllManual(ctx) {
			return false, fmt.Errorf("failed to clear reminders")
		}
		r.displaySuccess("Reminders cleared. Future scheduled reminders were kept.")

	case "/refresh":
		r.status.Show("Fetching reminders...")
		r.store.FetchAll(ctx, true)
		r.status.Hide()
		if !r.online() {
			r.displayInfo("Server unreachable, showing cached reminders.")
		}
		r.displayUnread()

	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}

	return false, nil
}
