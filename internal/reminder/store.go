package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var errNoID = errors.New("created reminder has no id")

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Backend is the REST collaborator holding the authoritative reminder list.
type Backend interface {
	List(ctx context.Context) ([]Reminder, error)
	Create(ctx context.Context, req CreateRequest) (*Reminder, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// Notifier displays transient notices to the user.
type Notifier interface {
	Popup(category, message string)
	Confirm(title, message string)
}

// Cache persists the reminder list across sessions. The clock anchor is
// never cached so each session derives "now" afresh.
type Cache interface {
	Load(ctx context.Context) ([]Reminder, error)
	Save(ctx context.Context, list []Reminder) error
}

// CreateRequest is the payload for a new manual reminder.
type CreateRequest struct {
	Title     string `json:"reminder_title" validate:"required,max=255"`
	Category  string `json:"category,omitempty" validate:"omitempty,eq=manual"`
	DateStart string `json:"reminder_date_start" validate:"required,datetime=2006-01-02"`
	Time      string `json:"reminder_time" validate:"required,datetime=15:04:05"`
}

// AddResult reports the outcome of AddManual.
type AddResult struct {
	Success   bool
	Scheduled bool
	Reminder  *Reminder
	Err       error
}

// Options configures a Store. Zero values fall back to the system clock,
// local time zone, no cache and a no-op logger.
type Options struct {
	Clock    Clock
	Location *time.Location
	Cache    Cache
	Logger   *zap.Logger
}

// Store owns the locally cached reminder list and the clock anchor used
// to classify reminders. All mutation goes through its methods; backend
// failures are logged and never escape as errors except inside results.
type Store struct {
	backend  Backend
	notifier Notifier
	cache    Cache
	clock    Clock
	loc      *time.Location
	logger   *zap.Logger
	validate *validator.Validate

	mu       sync.Mutex
	list     []Reminder
	now      time.Time
	notified mapset.Set[int64]
	version  uint64

	persistMu    sync.Mutex
	savedVersion uint64
}

// NewStore creates a Store with an empty list anchored at the current time.
func NewStore(backend Backend, notifier Notifier, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Store{
		backend:  backend,
		notifier: notifier,
		cache:    opts.Cache,
		clock:    opts.Clock,
		loc:      opts.Location,
		logger:   opts.Logger.Named("reminder"),
		validate: validator.New(),
		now:      opts.Clock.Now(),
		notified: mapset.NewThreadUnsafeSet[int64](),
	}
}

// Restore replaces the local list with the cached one, if any.
func (s *Store) Restore(ctx context.Context) {
	if s.cache == nil {
		return
	}

	list, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load cached reminders", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.list = list
	s.mu.Unlock()

	s.logger.Debug("restored cached reminders", zap.Int("count", len(list)))
}

// FetchAll replaces the local list with the backend's. When triggerPopups
// is set, unread reminders that were not known before and are already due
// pop up once; future ones are left for Tick. On failure local state is
// kept as is.
func (s *Store) FetchAll(ctx context.Context, triggerPopups bool) {
	fresh, err := s.backend.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch reminders", zap.Error(err))
		return
	}
	if fresh == nil {
		fresh = []Reminder{}
	}

	now := s.clock.Now()
	var due []Reminder

	s.mu.Lock()
	if triggerPopups {
		known := s.idsLocked()
		for _, r := range fresh {
			if r.IsRead || known.Contains(r.ID) || s.notified.Contains(r.ID) {
				continue
			}
			if r.DueBy(now, s.loc) {
				s.notified.Add(r.ID)
				due = append(due, r)
			}
		}
	}
	s.list = fresh
	s.pruneNotifiedLocked()
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)
	s.popup(due)
}

// Tick advances the clock anchor and pops every unread manual reminder
// whose due instant lies in (previous anchor, new anchor]. Successive
// windows are contiguous, so a reminder is neither skipped nor repeated.
func (s *Store) Tick() {
	s.mu.Lock()
	previous := s.now
	current := s.clock.Now()
	s.now = current

	var due []Reminder
	for _, r := range s.list {
		if !r.IsManual() || r.IsRead || s.notified.Contains(r.ID) {
			continue
		}
		at, ok := r.ScheduledAt(s.loc)
		if !ok {
			continue
		}
		if at.After(previous) && !at.After(current) {
			s.notified.Add(r.ID)
			due = append(due, r)
		}
	}
	s.mu.Unlock()

	s.popup(due)
}

// Now returns the clock anchor set by the last tick.
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// List returns a copy of every locally known reminder.
func (s *Store) List() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.list...)
}

// Get returns the local reminder with the given id.
func (s *Store) Get(id int64) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.list {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}

// ActiveList returns the reminders visible at the clock anchor.
func (s *Store) ActiveList() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// UnreadCount counts unread reminders in the active list.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.activeLocked() {
		if !r.IsRead {
			n++
		}
	}
	return n
}

// MarkRead flags the reminder as read locally and then tells the backend.
// A backend failure is logged and the local flag is kept.
func (s *Store) MarkRead(ctx context.Context, id int64) {
	s.mu.Lock()
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].IsRead = true
		}
	}
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)

	if err := s.backend.MarkRead(ctx, id); err != nil {
		s.logger.Warn("failed to mark reminder as read", zap.Int64("id", id), zap.Error(err))
	}
}

// MarkAllRead flags every reminder as read, with the same policy as MarkRead.
func (s *Store) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	for i := range s.list {
		s.list[i].IsRead = true
	}
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)

	if err := s.backend.MarkAllRead(ctx); err != nil {
		s.logger.Warn("failed to mark all reminders as read", zap.Error(err))
	}
}

// AddManual creates a manual reminder. On success the new reminder is
// prepended locally and a confirmation is shown.
func (s *Store) AddManual(ctx context.Context, req CreateRequest) AddResult {
	req.DateStart = NormalizeDate(req.DateStart)
	req.Time = NormalizeTime(req.Time)
	if req.Category == "" {
		req.Category = CategoryManual
	}

	if err := s.validate.Struct(req); err != nil {
		return AddResult{Err: fmt.Errorf("invalid reminder: %w", err)}
	}

	created, err := s.backend.Create(ctx, req)
	if err == nil && (created == nil || created.ID == 0) {
		err = errNoID
	}
	if err != nil {
		s.logger.Error("failed to create reminder", zap.Error(err))
		return AddResult{Err: err}
	}

	at, _ := ParseDueInstant(req.DateStart, req.Time, s.loc)
	scheduled := at.After(s.clock.Now())

	s.mu.Lock()
	s.list = append([]Reminder{*created}, s.list...)
	if !scheduled {
		// The confirmation already shows it.
		s.notified.Add(created.ID)
	}
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)

	if scheduled {
		s.notifier.Confirm("Reminder scheduled", fmt.Sprintf("Will notify you at %s %s", req.DateStart, req.Time))
	} else {
		s.notifier.Confirm("Reminder created", req.Title)
	}

	return AddResult{Success: true, Scheduled: scheduled, Reminder: created}
}

// DeleteOne deletes a reminder and drops it locally once the backend agrees.
func (s *Store) DeleteOne(ctx context.Context, id int64) bool {
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete reminder", zap.Int64("id", id), zap.Error(err))
		return false
	}

	s.mu.Lock()
	kept := s.list[:0:0]
	for _, r := range s.list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.list = kept
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)
	return true
}

// DeleteAllManual asks the backend to delete every reminder that is
// already active, then keeps only manual reminders still in the future.
func (s *Store) DeleteAllManual(ctx context.Context) bool {
	if err := s.backend.DeleteAll(ctx); err != nil {
		s.logger.Error("failed to clear reminders", zap.Error(err))
		return false
	}

	now := s.clock.Now()

	s.mu.Lock()
	kept := s.list[:0:0]
	for _, r := range s.list {
		at, ok := r.ScheduledAt(s.loc)
		if ok && at.After(now) {
			kept = append(kept, r)
		}
	}
	s.list = kept
	version, snapshot := s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, version, snapshot)
	return true
}

func (s *Store) activeLocked() []Reminder {
	active := make([]Reminder, 0, len(s.list))
	for _, r := range s.list {
		if r.DueBy(s.now, s.loc) {
			active = append(active, r)
		}
	}
	return active
}

func (s *Store) idsLocked() mapset.Set[int64] {
	ids := mapset.NewThreadUnsafeSetWithSize[int64](len(s.list))
	for _, r := range s.list {
		ids.Add(r.ID)
	}
	return ids
}

// pruneNotifiedLocked forgets ids that are no longer in the list.
func (s *Store) pruneNotifiedLocked() {
	current := s.idsLocked()
	s.notified = s.notified.Intersect(current)
}

// touchLocked bumps the list version and returns a snapshot to persist.
func (s *Store) touchLocked() (uint64, []Reminder) {
	s.version++
	return s.version, append([]Reminder(nil), s.list...)
}

// persist writes snapshot unless a newer version has already been saved.
func (s *Store) persist(ctx context.Context, version uint64, snapshot []Reminder) {
	if s.cache == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.savedVersion {
		return
	}
	if err := s.cache.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to cache reminders", zap.Error(err))
		return
	}
	s.savedVersion = version
}

func (s *Store) popup(due []Reminder) {
	for _, r := range due {
		s.logger.Info("reminder due", zap.Int64("id", r.ID), zap.String("category", r.Category))
		s.notifier.Popup(r.Category, r.Title)
	}
}
