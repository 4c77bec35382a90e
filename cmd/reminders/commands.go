package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/notexe/ledger-reminders/internal/app"
	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/notify"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"github.com/notexe/ledger-reminders/internal/repl"
	"github.com/notexe/ledger-reminders/internal/ui"
	"github.com/urfave/cli"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if token != "" {
		cfg.Backend.Token = token
	}
	if baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	if noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session is the state of a one-shot command.
type session struct {
	app       *app.App
	formatter *ui.Formatter
	sink      *notify.TerminalSink
}

// open builds the stack and fetches the current list. Popups are off for
// one-shot commands; only confirmations are shown.
func open(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	sink := notify.NewTerminalSink(os.Stdout, cfg.UI.ColoredOutput)
	a, err := app.New(ctx, cfg, sink)
	if err != nil {
		return nil, err
	}

	s := &session{
		app:       a,
		formatter: ui.NewFormatter(cfg.UI.ColoredOutput, a.Location),
		sink:      sink,
	}

	spinner := ui.NewSpinner(os.Stderr, cfg.UI.ColoredOutput)
	spinner.Start("Fetching reminders...")
	a.Store.FetchAll(ctx, false)
	spinner.Stop()

	if !a.Client.Online() {
		fmt.Fprintln(os.Stderr, s.formatter.FormatInfo("Server unreachable, showing cached reminders."))
	}
	return s, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func list(c *cli.Context) error {
	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	store := s.app.Store
	if showAll {
		fmt.Println(s.formatter.FormatReminders("All reminders", store.List(), store.Now()))
	} else {
		fmt.Println(s.formatter.FormatReminders("Reminders", store.ActiveList(), store.Now()))
	}
	fmt.Println(s.formatter.FormatUnread(store.UnreadCount()))
	return nil
}

func add(c *cli.Context) error {
	if addTitle == "" || addDate == "" || addTime == "" {
		return cli.ShowCommandHelp(c, c.Command.Name)
	}

	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	res := s.app.Store.AddManual(ctx, reminder.CreateRequest{
		Title:     addTitle,
		DateStart: addDate,
		Time:      addTime,
	})
	if !res.Success {
		return res.Err
	}
	return nil
}

func parseIDs(args cli.Args) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid reminder id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func read(c *cli.Context) error {
	ids, err := parseIDs(c.Args())
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if len(ids) == 0 {
		var unread []reminder.Reminder
		for _, r := range s.app.Store.ActiveList() {
			if !r.IsRead {
				unread = append(unread, r)
			}
		}
		if len(unread) == 0 {
			fmt.Println(s.formatter.FormatInfo("No unread reminders."))
			return nil
		}

		ids, err = ui.NewSelector("Mark as read", unread, true, s.app.Config.UI.ColoredOutput).Run()
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	for _, id := range ids {
		if _, ok := s.app.Store.Get(id); !ok {
			fmt.Println(s.formatter.FormatError(fmt.Errorf("reminder #%d not found", id)))
			continue
		}
		s.app.Store.MarkRead(ctx, id)
		fmt.Println(s.formatter.FormatSuccess(fmt.Sprintf("Reminder #%d marked as read.", id)))
	}
	return nil
}

func readAll(c *cli.Context) error {
	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.app.Store.MarkAllRead(ctx)
	fmt.Println(s.formatter.FormatSuccess("All reminders marked as read."))
	return nil
}

func deleteOne(c *cli.Context) error {
	ids, err := parseIDs(c.Args())
	if err != nil {
		return err
	}
	if len(ids) > 1 {
		return fmt.Errorf("delete takes a single id")
	}

	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if len(ids) == 0 {
		list := s.app.Store.List()
		if len(list) == 0 {
			fmt.Println(s.formatter.FormatInfo("No reminders."))
			return nil
		}
		ids, err = ui.NewSelector("Delete reminder", list, false, s.app.Config.UI.ColoredOutput).Run()
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	if !s.app.Store.DeleteOne(ctx, ids[0]) {
		return fmt.Errorf("failed to delete reminder #%d", ids[0])
	}
	fmt.Println(s.formatter.FormatSuccess(fmt.Sprintf("Reminder #%d deleted.", ids[0])))
	return nil
}

func clearAll(c *cli.Context) error {
	ctx := context.Background()
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if !s.app.Store.DeleteAllManual(ctx) {
		return fmt.Errorf("failed to clear reminders")
	}
	fmt.Println(s.formatter.FormatSuccess("Reminders cleared. Future scheduled reminders were kept."))
	return nil
}

// watch runs the scheduler and the shell until /quit or a signal.
func watch(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := notify.NewTerminalSink(os.Stdout, cfg.UI.ColoredOutput)
	a, err := app.New(ctx, cfg, sink)
	if err != nil {
		return err
	}
	defer a.Close()

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput, a.Location)
	shell, err := repl.NewREPL(a.Store, formatter, a.Client.Online)
	if err != nil {
		return err
	}
	sink.SetWriter(shell.Stdout())

	a.Client.OnConnectivityChange(func(online bool) {
		if online {
			fmt.Fprintln(shell.Stdout(), formatter.FormatSystem("Server reachable again."))
		} else {
			fmt.Fprintln(shell.Stdout(), formatter.FormatInfo("Server unreachable, showing cached reminders."))
		}
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	sched := a.Scheduler()
	sched.Start(ctx)
	defer sched.Stop()

	return shell.Start(ctx)
}
