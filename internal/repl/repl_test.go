package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/notexe/ledger-reminders/internal/reminder"
	"github.com/notexe/ledger-reminders/internal/ui"
)

type fakeStore struct {
	list      []reminder.Reminder
	now       time.Time
	fetches   []bool
	read      []int64
	readAll   int
	added     []reminder.CreateRequest
	addResult reminder.AddResult
	deleted   []int64
	deleteOK  bool
	cleared   int
}

func (f *fakeStore) FetchAll(ctx context.Context, triggerPopups bool) {
	f.fetches = append(f.fetches, triggerPopups)
}
func (f *fakeStore) Now() time.Time { return f.now }
func (f *fakeStore) List() []reminder.Reminder { return f.list }
func (f *fakeStore) ActiveList() []reminder.Reminder {
	var active []reminder.Reminder
	for _, r := range f.list {
		if r.DueBy(f.now, time.UTC) {
			active = append(active, r)
		}
	}
	return active
}
func (f *fakeStore) UnreadCount() int {
	n := 0
	for _, r := range f.ActiveList() {
		if !r.IsRead {
			n++
		}
	}
	return n
}
func (f *fakeStore) MarkRead(ctx context.Context, id int64) { f.read = append(f.read, id) }
func (f *fakeStore) MarkAllRead(ctx context.Context) { f.readAll++ }
func (f *fakeStore) AddManual(ctx context.Context, req reminder.CreateRequest) reminder.AddResult {
	f.added = append(f.added, req)
	return f.addResult
}
func (f *fakeStore) DeleteOne(ctx context.Context, id int64) bool {
	f.deleted = append(f.deleted, id)
	return f.deleteOK
}
func (f *fakeStore) DeleteAllManual(ctx context.Context) bool {
	f.cleared++
	return f.deleteOK
}

func newTestREPL(store *fakeStore) (*REPL, *bytes.Buffer) {
	var out bytes.Buffer
	return newREPL(store, ui.NewFormatter(false, time.UTC), nil, &out), &out
}

func seededStore() *fakeStore {
	return &fakeStore{
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		list: []reminder.Reminder{
			{ID: 1, Category: reminder.CategoryBudget, Title: "food over budget"},
			{ID: 2, Category: reminder.CategoryManual, Title: "pay rent", DateStart: "2025-06-01", Time: "18:00:00"},
		},
		deleteOK: true,
	}
}

func TestParseCommand(t *testing.T) {
	isCmd, cmd, args := parseCommand("/ADD pay rent | 2025-06-01 | 18:00")
	if !isCmd || cmd != "/add" || args != "pay rent | 2025-06-01 | 18:00" {
		t.Errorf("unexpected parse %v %q %q", isCmd, cmd, args)
	}
	if isCmd, _, _ := parseCommand("hello"); isCmd {
		t.Error("plain text is not a command")
	}
}

func TestParseAdd(t *testing.T) {
	req, err := parseAdd(" pay rent | 2025/06/01 |18:00 ")
	if err != nil {
		t.Fatal(err)
	}
	if req.Title != "pay rent" || req.DateStart != "2025/06/01" || req.Time != "18:00" {
		t.Errorf("unexpected request %+v", req)
	}
	if _, err := parseAdd("pay rent"); err == nil {
		t.Error("expected usage error")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("#12"); err != nil || id != 12 {
		t.Errorf("expected 12, got %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestListShowsOnlyActive(t *testing.T) {
	store := seededStore()
	r, out := newTestREPL(store)

	if _, err := r.handleCommand(context.Background(), "/list", ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "food over budget") || strings.Contains(out.String(), "pay rent") {
		t.Errorf("expected only the active reminder, got %q", out.String())
	}

	out.Reset()
	r.handleCommand(context.Background(), "/all", "")
	if !strings.Contains(out.String(), "pay rent") || !strings.Contains(out.String(), "scheduled") {
		t.Errorf("expected the scheduled reminder in /all, got %q", out.String())
	}
}

func TestWriteCommands(t *testing.T) {
	store := seededStore()
	store.addResult = reminder.AddResult{Success: true, Scheduled: true}
	r, _ := newTestREPL(store)
	ctx := context.Background()

	steps := []struct{ cmd, args string }{
		{"/add", "stretch | 2025-06-02 | 07:30"},
		{"/read", "1"},
		{"/readall", ""},
		{"/delete", "2"},
		{"/clear", ""},
		{"/refresh", ""},
	}
	for _, s := range steps {
		if _, err := r.handleCommand(ctx, s.cmd, s.args); err != nil {
			t.Fatalf("%s: %v", s.cmd, err)
		}
	}

	if len(store.added) != 1 || store.added[0].Title != "stretch" {
		t.Errorf("unexpected adds %+v", store.added)
	}
	if len(store.read) != 1 || store.read[0] != 1 || store.readAll != 1 {
		t.Errorf("unexpected reads %v / %d", store.read, store.readAll)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 2 || store.cleared != 1 {
		t.Errorf("unexpected deletes %v / %d", store.deleted, store.cleared)
	}
	if len(store.fetches) != 1 || !store.fetches[0] {
		t.Errorf("expected a refresh with popups, got %v", store.fetches)
	}
}

func TestCommandFailures(t *testing.T) {
	store := seededStore()
	store.deleteOK = false
	store.addResult = reminder.AddResult{Err: errors.New("invalid reminder")}
	r, _ := newTestREPL(store)
	ctx := context.Background()

	for _, c := range []struct{ cmd, args string }{
		{"/add", "x | bad | 10:00"},
		{"/delete", "1"},
		{"/clear", ""},
		{"/read", "nope"},
		{"/bogus", ""},
	} {
		if _, err := r.handleCommand(ctx, c.cmd, c.args); err == nil {
			t.Errorf("%s: expected error", c.cmd)
		}
	}
}

func TestQuit(t *testing.T) {
	r, _ := newTestREPL(seededStore())
	quit, err := r.handleCommand(context.Background(), "/quit", "")
	if err != nil || !quit {
		t.Errorf("expected quit, got %v, %v", quit, err)
	}
}
