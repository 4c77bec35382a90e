package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/notexe/ledger-reminders/internal/reminder"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

// parseID reads a reminder id argument.
func parseID(args string) (int64, error) {
	if args == "" {
		return 0, fmt.Errorf("missing reminder id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", args)
	}
	return id, nil
}

// parseAdd splits "<title> | <date> | <time>".
func parseAdd(args string) (reminder.CreateRequest, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		return reminder.CreateRequest{}, fmt.Errorf("usage: /add <title> | <YYYY-MM-DD> | <HH:MM>")
	}
	return reminder.CreateRequest{
		Title:     strings.TrimSpace(parts[0]),
		DateStart: strings.TrimSpace(parts[1]),
		Time:      strings.TrimSpace(parts[2]),
	}, nil
}

func setupReadline(prompt string) (*readline.Instance, error) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("/list"),
		readline.PcItem("/all"),
		readline.PcItem("/unread"),
		readline.PcItem("/add"),
		readline.PcItem("/read"),
		readline.PcItem("/readall"),
		readline.PcItem("/delete"),
		readline.PcItem("/clear"),
		readline.PcItem("/refresh"),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
	)

	return readline.NewEx(&readline.Config{
		Prompt:              prompt,
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
