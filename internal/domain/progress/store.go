package progress

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type entry struct {
	title       string
	totalSteps  int
	completed   map[int]struct{}
	progress    float64
	startedAt   time.Time
	lastUpdated time.Time
}

func (e *entry) snapshot() Project {
	steps := make([]int, 0, len(e.completed))
	for s := range e.completed {
		steps = append(steps, s)
	}
	sort.Ints(steps)
	return Project{
		Title:          e.title,
		TotalSteps:     e.totalSteps,
		CompletedSteps: steps,
		Progress:       e.progress,
		StartedAt:      e.startedAt,
		LastUpdated:    e.lastUpdated,
	}
}

// Options configures a Store.
type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// Store is the in-memory collection of started projects. Operations on unknown
// titles and duplicate adds are silent no-ops; the store has no error paths.
type Store struct {
	mu        sync.Mutex
	order     []*entry
	byTitle   map[string]*entry
	listeners []*listenerSlot
	now       func() time.Time
	logger    *slog.Logger

	// Events are numbered under mu and delivered strictly in that order.
	issued      uint64
	deliverMu   sync.Mutex
	deliverCond *sync.Cond
	delivered   uint64
}

type listenerSlot struct {
	fn Listener
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		byTitle: make(map[string]*entry),
		now:     now,
		logger:  logger,
	}
	s.deliverCond = sync.NewCond(&s.deliverMu)
	return s
}

// AddProject inserts a project with no completed steps. If the title is already
// present nothing changes and the existing project is returned with added=false.
func (s *Store) AddProject(title string, totalSteps int) (proj Project, added bool) {
	if totalSteps < 0 {
		totalSteps = 0
	}

	s.mu.Lock()
	if existing, ok := s.byTitle[title]; ok {
		proj = existing.snapshot()
		s.mu.Unlock()
		s.logger.Debug("project already tracked", "title", title)
		return proj, false
	}

	ts := s.now()
	e := &entry{
		title:       title,
		totalSteps:  totalSteps,
		completed:   make(map[int]struct{}),
		startedAt:   ts,
		lastUpdated: ts,
	}
	s.byTitle[title] = e
	s.order = append(s.order, e)
	proj = e.snapshot()
	ticket, listeners := s.ticketLocked()
	s.mu.Unlock()

	s.logger.Info("project added", "title", title, "total_steps", totalSteps)
	s.publish(ticket, listeners, Event{Type: EventProjectAdded, Project: proj})
	return proj, true
}

// MarkStepComplete adds step to the project's completed set and refreshes
// lastUpdated, even when the step was already complete. Unknown titles and
// steps outside 1..totalSteps are ignored.
func (s *Store) MarkStepComplete(title string, step int) (proj Project, found bool) {
	s.mu.Lock()
	e, ok := s.byTitle[title]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("step completion for unknown project ignored", "title", title, "step", step)
		return Project{}, false
	}
	if step < 1 || step > e.totalSteps {
		proj = e.snapshot()
		s.mu.Unlock()
		s.logger.Debug("step out of range ignored", "title", title, "step", step, "total_steps", e.totalSteps)
		return proj, true
	}

	_, repeat := e.completed[step]
	e.completed[step] = struct{}{}
	e.progress = percent(len(e.completed), e.totalSteps)
	e.lastUpdated = s.now()
	proj = e.snapshot()
	ticket, listeners := s.ticketLocked()
	s.mu.Unlock()

	s.logger.Info("step completed", "title", title, "step", step, "progress", proj.Progress, "repeat", repeat)
	s.publish(ticket, listeners, Event{Type: EventStepCompleted, Project: proj, Step: step, Repeat: repeat})
	return proj, true
}

// ListProjects returns a snapshot of every project in insertion order.
func (s *Store) ListProjects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make([]Project, 0, len(s.order))
	for _, e := range s.order {
		projects = append(projects, e.snapshot())
	}
	return projects
}

// GetProject returns a snapshot of the project with the given title.
func (s *Store) GetProject(title string) (Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byTitle[title]
	if !ok {
		return Project{}, false
	}
	return e.snapshot(), true
}

// Len returns the number of tracked projects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners see events in mutation order, one at a time, outside the store
// lock. They may read the store but must not mutate it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	slot := &listenerSlot{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, slot)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l == slot {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// ticketLocked numbers the event of the mutation in progress and captures
// the listeners that will receive it. Callers hold mu.
func (s *Store) ticketLocked() (uint64, []Listener) {
	s.issued++
	if len(s.listeners) == 0 {
		return s.issued, nil
	}
	out := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		out[i] = l.fn
	}
	return s.issued, out
}

// publish waits until every earlier event has been delivered, then delivers
// ev.
func (s *Store) publish(ticket uint64, listeners []Listener, ev Event) {
	s.deliverMu.Lock()
	for s.delivered+1 != ticket {
		s.deliverCond.Wait()
	}
	s.deliverMu.Unlock()

	defer func() {
		s.deliverMu.Lock()
		s.delivered = ticket
		s.deliverCond.Broadcast()
		s.deliverMu.Unlock()
	}()
	for _, fn := range listeners {
		fn(ev)
	}
}
