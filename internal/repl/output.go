package repl

import (
	"fmt"
)

func (r *REPL) displayError(err error) {
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
}

func (r *REPL) displayWelcome() {
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.online(), r.store.UnreadCount()))
}

func (r *REPL) displayHelp() {
	fmt.Fprintln(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySystem(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSystem(msg))
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSuccess(msg))
}

func (r *REPL) displayList(title string, all bool) {
	list := r.store.ActiveList()
	if all {
		list = r.store.List()
	}
	fmt.Fprintln(r.out, r.formatter.FormatReminders(title, list, r.store.Now()))
}

func (r *REPL) displayUnread() {
	fmt.Fprintln(r.out, r.formatter.FormatUnread(r.store.UnreadCount()))
}
