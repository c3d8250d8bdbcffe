package citysuggest

import (
	"slices"
	"sync"
)

// Selection is the keyboard cursor over the current match list.
// The zero value is NoSelection.
type Selection struct {
	Index  int
	Active bool
}

// NoSelection means no match is highlighted.
var NoSelection = Selection{}

// Selected highlights the i-th match.
func Selected(i int) Selection {
	return Selection{Index: i, Active: true}
}

// State is everything a renderer needs to draw the widget.
type State struct {
	Query     string       // Current input text
	Matches   []CityRecord // Current result list
	Selection Selection
	Open      bool   // Whether the result list is shown
	Value     string // Last committed city name
}

// Current returns the highlighted match, if any.
func (s State) Current() (CityRecord, bool) {
	if !s.Selection.Active || s.Selection.Index >= len(s.Matches) {
		return CityRecord{}, false
	}
	return s.Matches[s.Selection.Index], true
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// QueryChanged carries new input text together with the matches computed for it.
type QueryChanged struct {
	Text    string
	Matches []CityRecord
}

// Next moves the highlight down, wrapping to the top.
type Next struct{}

// Previous moves the highlight up, wrapping to the bottom.
type Previous struct{}

// Commit picks the highlighted match.
type Commit struct{}

// Choose picks a city by name, as a click on a result does.
// The name is taken as is; it need not be one of the matches.
type Choose struct {
	Name string
}

// Dismiss closes the result list without picking anything.
type Dismiss struct{}

func (QueryChanged) event() {}
func (Next) event()         {}
func (Previous) event()     {}
func (Commit) event()       {}
func (Choose) event()       {}
func (Dismiss) event()      {}

// Reduce applies ev to s and returns the new state. It has no side effects.
func Reduce(s State, ev Event) State {
	m := len(s.Matches)

	switch ev := ev.(type) {
	case QueryChanged:
		// The match list is replaced, so a previous index means nothing.
		s.Query = ev.Text
		s.Matches = ev.Matches
		s.Selection = NoSelection
		s.Open = len(ev.Matches) > 0
	case Next:
		if m == 0 {
			return s
		}
		if !s.Selection.Active {
			s.Selection = Selected(0)
		} else {
			s.Selection = Selected((s.Selection.Index + 1) % m)
		}
	case Previous:
		if m == 0 {
			return s
		}
		if !s.Selection.Active {
			s.Selection = Selected(m - 1)
		} else {
			s.Selection = Selected((s.Selection.Index - 1 + m) % m)
		}
	case Commit, Choose:
		name, ok := committed(s, ev)
		if !ok {
			return s
		}
		s.Query = name
		s.Value = name
		s.Matches = nil
		s.Selection = NoSelection
		s.Open = false
	case Dismiss:
		s.Matches = nil
		s.Selection = NoSelection
		s.Open = false
	}
	return s
}

// committed reports the city name ev commits when applied to s.
func committed(s State, ev Event) (string, bool) {
	switch ev := ev.(type) {
	case Commit:
		if c, ok := s.Current(); ok {
			return c.Name, true
		}
	case Choose:
		return ev.Name, true
	}
	return "", false
}

// Session drives Reduce from user input and publishes every new state to its
// subscribers. Safe for concurrent use.
type Session struct {
	engine *Engine

	// notifyMu serializes Dispatch so subscribers see states in the order
	// they were produced. It is held while callbacks run.
	notifyMu sync.Mutex

	mu          sync.Mutex
	state       State
	nextID      int
	subscribers []subscriber
	onCommit    []func(string)
}

type subscriber struct {
	id int
	fn func(State)
}

// NewSession creates a session answering queries with engine.
func NewSession(engine *Engine) *Session {
	return &Session{engine: engine}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every state produced by Dispatch.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// OnCommit registers fn to be called with the city name whenever a
// selection is committed.
func (s *Session) OnCommit(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

// Dispatch applies ev and notifies commit hooks, then subscribers.
// Callbacks run on the caller's goroutine, one Dispatch at a time, so every
// subscriber receives states in order. They may read State but must not call
// Dispatch, SetQuery or Key.
func (s *Session) Dispatch(ev Event) State {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, ev)
	s.state = next
	subs := make([]func(State), len(s.subscribers))
	for i, sub := range s.subscribers {
		subs[i] = sub.fn
	}
	hooks := slices.Clone(s.onCommit)
	s.mu.Unlock()

	if name, ok := committed(prev, ev); ok {
		for _, fn := range hooks {
			fn(name)
		}
	}
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// SetQuery searches for text and dispatches the result.
func (s *Session) SetQuery(text string) State {
	return s.Dispatch(QueryChanged{Text: text, Matches: s.engine.Search(text)})
}

// Key dispatches the event bound to a key name and reports whether the key
// was consumed. Both DOM names (ArrowDown, ArrowUp, Enter, Escape) and
// terminal names (down, up, enter, esc) are accepted. Arrows are ignored while
// there are no matches, and Enter is only consumed when a match is
// highlighted, so it can still submit a surrounding form.
func (s *Session) Key(key string) bool {
	switch key {
	case "ArrowDown", "down":
		if len(s.State().Matches) == 0 {
			return false
		}
		s.Dispatch(Next{})
	case "ArrowUp", "up":
		if len(s.State().Matches) == 0 {
			return false
		}
		s.Dispatch(Previous{})
	case "Enter", "enter":
		if _, ok := s.State().Current(); !ok {
			return false
		}
		s.Dispatch(Commit{})
	case "Escape", "esc":
		s.Dispatch(Dismiss{})
	default:
		return false
	}
	return true
}
