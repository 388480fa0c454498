package todo

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/view"
)

var (
	ErrReadOnly = errors.New("to-do list is read-only")
	ErrNotFound = errors.New("to-do not found")
)

// API is the part of the dashboard service the syncer needs.
type API interface {
	UpdateTodo(ctx context.Context, classID, todoID int, completed bool) (Todo, error)
	Todos(ctx context.Context, classID int) ([]Todo, error)
}

type Options struct {
	ClassID  int
	ReadOnly bool
	API      API
	Scope    *view.Scope
	Logger   core.Logger
	OnChange func(State) // called after every state change, outside of any lock
	OnError  func(error) // called when an update fails, before the resync, then again if the resync fails
}

// Syncer applies to-do toggles optimistically and reconciles them with the backend.
// Updates of one item are sent one at a time, each carrying the latest desired value.
type Syncer struct {
	opts Options

	mu    sync.Mutex
	state State
	locks map[int]*sync.Mutex

	wg sync.WaitGroup
}

func NewSyncer(todos []Todo, opts Options) *Syncer {
	if opts.Scope == nil {
		opts.Scope = view.NewScope(context.Background())
	}
	return &Syncer{
		opts:  opts,
		state: Reduce(State{}, Loaded{Todos: todos}),
		locks: make(map[int]*sync.Mutex),
	}
}

func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Syncer) ReadOnly() bool { return s.opts.ReadOnly }

// Toggle flips the item immediately and schedules its update.
func (s *Syncer) Toggle(id int) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}
	if !s.opts.Scope.Active() {
		return context.Canceled
	}

	s.mu.Lock()
	if s.state.Find(id) < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.state = Reduce(s.state, Toggled{ID: id})
	snapshot := s.state.clone()
	s.mu.Unlock()
	s.notify(snapshot)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.flush(id)
	}()
	return nil
}

// Wait blocks until every scheduled update and resync has completed.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Resync replaces the list with the server's.
func (s *Syncer) Resync() error {
	todos, err := s.opts.API.Todos(s.opts.Scope.Context(), s.opts.ClassID)
	if err != nil {
		if s.unmounted(err) {
			return nil
		}
		s.warn("resyncing to-dos", err)
		return errors.Wrap(err, "resyncing to-dos")
	}
	s.apply(Loaded{Todos: todos})
	return nil
}

func (s *Syncer) flush(id int) {
	lock := s.itemLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	i := s.state.Find(id)
	if i < 0 { // dropped by a resync
		s.mu.Unlock()
		return
	}
	e := s.state.Entries[i]
	s.mu.Unlock()

	if e.Status != Pending {
		return
	}
	if e.IsCompleted == e.Confirmed { // toggled back before its turn
		s.apply(Confirmed{ID: id, Value: e.Confirmed, Seq: e.Seq})
		return
	}

	todo, err := s.opts.API.UpdateTodo(s.opts.Scope.Context(), s.opts.ClassID, id, e.IsCompleted)
	if err != nil {
		if s.unmounted(err) {
			return
		}
		s.warn("updating to-do", err)
		if !s.apply(Failed{ID: id}) {
			return
		}
		if s.opts.OnError != nil {
			s.opts.OnError(err)
		}
		if rerr := s.Resync(); rerr != nil && s.opts.OnError != nil {
			s.opts.OnError(rerr)
		}
		return
	}
	s.apply(Confirmed{ID: id, Value: todo.IsCompleted, Seq: e.Seq})
}

// apply reduces ev into the state unless the page is gone, and reports whether it did.
func (s *Syncer) apply(ev Event) bool {
	var snapshot State
	applied := s.opts.Scope.Do(func() {
		s.mu.Lock()
		s.state = Reduce(s.state, ev)
		snapshot = s.state.clone()
		s.mu.Unlock()
	})
	if applied {
		s.notify(snapshot)
	}
	return applied
}

func (s *Syncer) itemLock(id int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = new(sync.Mutex)
		s.locks[id] = lock
	}
	return lock
}

func (s *Syncer) unmounted(err error) bool {
	return !s.opts.Scope.Active() || errors.Cause(err) == context.Canceled
}

func (s *Syncer) notify(state State) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(state)
	}
}

func (s *Syncer) warn(msg string, err error) {
	if s.opts.Logger != nil {
		s.opts.Logger.Warn(msg, err)
	}
}
