// Package todo keeps the optimistic to-do list of a dashboard in sync with the backend.
package todo

type Todo struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"is_completed"`
}

type Status int

const (
	Committed  Status = iota // matches the last server answer
	Pending                  // flipped locally, not yet confirmed
	RolledBack               // reverted after a failed update
)

func (s Status) String() string {
	switch s {
	case Committed:
		return "committed"
	case Pending:
		return "pending"
	case RolledBack:
		return "rolled-back"
	}
	return "unknown"
}

// Entry is a cached to-do plus its sync bookkeeping.
// IsCompleted is what the page shows; Confirmed is the last value the server agreed to.
type Entry struct {
	Todo
	Confirmed bool
	Status    Status
	Seq       int // bumped on every local change
}

type State struct {
	Entries []Entry
}

// Find returns the index of the entry with the given id, or -1.
func (s State) Find(id int) int {
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Todos returns the displayed list.
func (s State) Todos() []Todo {
	todos := make([]Todo, len(s.Entries))
	for i, e := range s.Entries {
		todos[i] = e.Todo
	}
	return todos
}

func (s State) clone() State {
	entries := make([]Entry, len(s.Entries))
	copy(entries, s.Entries)
	return State{Entries: entries}
}

type Event interface {
	apply(State) State
}

// Loaded replaces the list with a server snapshot.
type Loaded struct {
	Todos []Todo
}

// Toggled flips an entry locally.
type Toggled struct {
	ID int
}

// Confirmed records the server answer to the update sent at Seq.
type Confirmed struct {
	ID    int
	Value bool
	Seq   int
}

// Failed reverts an entry to its confirmed value.
type Failed struct {
	ID int
}

// Reduce returns the state after ev. s is never modified.
func Reduce(s State, ev Event) State {
	return ev.apply(s)
}

func (ev Loaded) apply(s State) State {
	entries := make([]Entry, len(ev.Todos))
	for i, t := range ev.Todos {
		entries[i] = Entry{Todo: t, Confirmed: t.IsCompleted, Status: Committed}
		// keep counting so answers to requests sent before the snapshot cannot commit
		if j := s.Find(t.ID); j >= 0 {
			entries[i].Seq = s.Entries[j].Seq + 1
		}
	}
	return State{Entries: entries}
}

func (ev Toggled) apply(s State) State {
	i := s.Find(ev.ID)
	if i < 0 {
		return s
	}
	s = s.clone()
	e := &s.Entries[i]
	e.IsCompleted = !e.IsCompleted
	e.Status = Pending
	e.Seq++
	return s
}

func (ev Confirmed) apply(s State) State {
	i := s.Find(ev.ID)
	if i < 0 {
		return s
	}
	s = s.clone()
	e := &s.Entries[i]
	e.Confirmed = ev.Value
	// an older answer still wins over a snapshot taken before it, but never over a pending toggle or a rollback
	if e.Seq == ev.Seq || e.Status == Committed {
		e.IsCompleted = ev.Value
		e.Status = Committed
	}
	return s
}

func (ev Failed) apply(s State) State {
	i := s.Find(ev.ID)
	if i < 0 {
		return s
	}
	s = s.clone()
	e := &s.Entries[i]
	e.IsCompleted = e.Confirmed
	e.Status = RolledBack
	e.Seq++
	return s
}
