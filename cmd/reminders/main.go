// Command reminders lists, schedules and watches ledger reminders.
//
// Usage:
//
//	reminders list [--all]
//	reminders add --title "pay rent" --date 2025-06-01 --time 18:00
//	reminders read [id]
//	reminders read-all
//	reminders delete [id]
//	reminders clear
//	reminders watch
package main

import (
	"fmt"
	"os"

	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/urfave/cli"
)

var version = "dev"

var (
	configPath string
	token      string
	baseURL    string
	noColor    bool
	showAll    bool

	addTitle string
	addDate  string
	addTime  string
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "config",
		Usage:       "path to configuration file",
		Value:       config.GetDefaultConfigPath(),
		Destination: &configPath,
	},
	cli.StringFlag{
		Name:        "token",
		Usage:       "session token (overrides config and REMINDERS_TOKEN)",
		Destination: &token,
	},
	cli.StringFlag{
		Name:        "api",
		Usage:       "backend base URL (overrides config)",
		Destination: &baseURL,
	},
	cli.BoolFlag{
		Name:        "no-color",
		Usage:       "disable colored output",
		Destination: &noColor,
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "reminders"
	app.Usage = "ledger reminder scheduler and notifier"
	app.UsageText = "reminders [global options] <command> [arguments...]"
	app.Version = version
	app.Flags = globalFlags
	app.Commands = []cli.Command{
		{
			Name:    "list",
			Aliases: []string{"l"},
			Usage:   "show active reminders",
			Action:  list,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:        "all, a",
					Usage:       "include manual reminders that are not due yet",
					Destination: &showAll,
				},
			},
		},
		{
			Name:    "add",
			Aliases: []string{"a"},
			Usage:   "schedule a manual reminder",
			Action:  add,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "title, t", Usage: "reminder title", Destination: &addTitle},
				cli.StringFlag{Name: "date, d", Usage: "date as YYYY-MM-DD", Destination: &addDate},
				cli.StringFlag{Name: "time", Usage: "time as HH:MM or HH:MM:SS", Destination: &addTime},
			},
		},
		{
			Name:      "read",
			Aliases:   []string{"r"},
			Usage:     "mark reminders as read (pick interactively without an id)",
			ArgsUsage: "[id...]",
			Action:    read,
		},
		{
			Name:   "read-all",
			Usage:  "mark every reminder as read",
			Action: readAll,
		},
		{
			Name:      "delete",
			Aliases:   []string{"d"},
			Usage:     "delete a reminder (pick interactively without an id)",
			ArgsUsage: "[id]",
			Action:    deleteOne,
		},
		{
			Name:   "clear",
			Usage:  "delete everything except manual reminders still in the future",
			Action: clearAll,
		},
		{
			Name:    "watch",
			Aliases: []string{"w"},
			Usage:   "run the scheduler with an interactive shell",
			Action:  watch,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
