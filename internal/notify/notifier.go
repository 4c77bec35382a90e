// Package notify renders transient reminder notices.
package notify

import (
	"sync"
	"time"

	"github.com/notexe/ledger-reminders/internal/reminder"
)

// DefaultDuration is how long a notice stays on screen.
const DefaultDuration = 6 * time.Second

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// Notice is a single auto-dismissing message.
type Notice struct {
	Title    string
	Message  string
	Severity Severity
	Duration time.Duration
}

// Sink displays notices somewhere.
type Sink interface {
	Show(n Notice)
}

// NoticeFor maps a reminder category to its display title and severity.
func NoticeFor(category, message string) Notice {
	n := Notice{Message: message, Duration: DefaultDuration}

	switch category {
	case reminder.CategoryBudget:
		n.Title, n.Severity = "Budget warning", SeverityWarning
	case reminder.CategorySavings:
		n.Title, n.Severity = "Savings goal reached", SeveritySuccess
	case reminder.CategoryManual:
		n.Title, n.Severity = "Scheduled reminder", SeverityInfo
	default:
		n.Title, n.Severity = "New notification", SeverityInfo
	}

	return n
}

// Notifier fans notices out to its sinks. It holds no reminder state.
type Notifier struct {
	mu       sync.RWMutex
	sinks    []Sink
	duration time.Duration
}

// New creates a Notifier writing to sinks. A non-positive duration
// falls back to DefaultDuration.
func New(duration time.Duration, sinks ...Sink) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{sinks: sinks, duration: duration}
}

// AddSink registers another sink.
func (n *Notifier) AddSink(s Sink) {
	n.mu.Lock()
	n.sinks = append(n.sinks, s)
	n.mu.Unlock()
}

// Popup shows the notice for a due reminder.
func (n *Notifier) Popup(category, message string) {
	notice := NoticeFor(category, message)
	notice.Duration = n.duration
	n.show(notice)
}

// Confirm shows a success notice, e.g. after creating a reminder.
func (n *Notifier) Confirm(title, message string) {
	n.show(Notice{
		Title:    title,
		Message:  message,
		Severity: SeveritySuccess,
		Duration: n.duration,
	})
}

func (n *Notifier) show(notice Notice) {
	n.mu.RLock()
	sinks := n.sinks
	n.mu.RUnlock()

	for _, s := range sinks {
		s.Show(notice)
	}
}
