package learning

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	"github.com/trezcool/hydrofarm/core/view"
)

type State int

const (
	Loading State = iota
	Answering
	Answered
	Finished
	Closed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Answering:
		return "quiz"
	case Answered:
		return "result"
	case Finished:
		return "finished"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Alerts the page shows in a blocking dialog.
const (
	AlertNoSelection  = "Please choose an answer."
	AlertLoadFailed   = "Could not load the quiz."
	AlertTimeout      = "The request timed out. Check your connection and reload."
	AlertSubmitFailed = "Could not send your answer. Please try again."
)

// finished messages
const (
	MsgNoQuiz          = "No quiz today. See you tomorrow!"
	MsgAlreadyAnswered = "Today's quiz is already answered."
)

var ErrInvalidTransition = errors.New("invalid quiz flow transition")

// Snapshot is what the quiz page renders.
type Snapshot struct {
	State    State
	Quiz     *Quiz
	Today    TodayQuiz
	Selected *int
	Result   *AnswerResult
	Message  string // finished state
	Redirect string // closed state
	Alert    string // set by the last transition
}

// Flow drives the quiz page: loading -> quiz -> result -> (loading | finished), plus closed.
type Flow struct {
	svc     *Service
	scope   *view.Scope
	classID int
	logger  core.Logger

	mu   sync.Mutex
	snap Snapshot
}

func NewFlow(svc *Service, scope *view.Scope, classID int, logger core.Logger) *Flow {
	return &Flow{
		svc:     svc,
		scope:   scope,
		classID: classID,
		logger:  logger,
		snap:    Snapshot{State: Loading},
	}
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Load fetches today's quiz. It must be called in the loading state.
func (f *Flow) Load() (Snapshot, error) {
	if err := f.expect(Loading); err != nil {
		return f.Snapshot(), err
	}

	today, err := f.svc.Today(f.scope.Context(), f.classID)
	f.scope.Do(func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.snap.Alert = ""
		if err != nil {
			f.loadFailed(err)
			return
		}
		f.snap.Today = today
		switch {
		case !today.HasQuiz || today.Quiz == nil:
			f.snap.State = Finished
			f.snap.Message = today.Message
			if f.snap.Message == "" {
				f.snap.Message = MsgNoQuiz
			}
		case today.Quiz.IsAnswered:
			f.snap.State = Finished
			f.snap.Quiz = today.Quiz
			f.snap.Message = MsgAlreadyAnswered
		default:
			f.snap.State = Answering
			f.snap.Quiz = today.Quiz
		}
	})
	return f.Snapshot(), nil
}

func (f *Flow) loadFailed(err error) {
	f.warn("loading quiz", err)
	f.snap.State = Closed
	if core.IsAuthError(err) {
		f.snap.Redirect = session.LoginPath
		return
	}
	f.snap.Redirect = session.DashboardPath(f.classID)
	if core.IsTimeout(err) {
		f.snap.Alert = AlertTimeout
	} else {
		f.snap.Alert = AlertLoadFailed
	}
}

// Select picks option i. Only one option is selected at a time.
func (f *Flow) Select(i int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snap.State != Answering {
		return ErrInvalidTransition
	}
	if i < 0 || i >= len(f.snap.Quiz.Options) {
		return errors.Errorf("option %d out of range", i)
	}
	f.snap.Selected = &i
	f.snap.Alert = ""
	return nil
}

func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.State == Answering && f.snap.Selected != nil
}

// Submit sends the selected answer. A failure keeps the quiz state and sets an alert.
func (f *Flow) Submit() (Snapshot, error) {
	f.mu.Lock()
	if f.snap.State != Answering {
		f.mu.Unlock()
		return f.Snapshot(), ErrInvalidTransition
	}
	if f.snap.Selected == nil {
		f.snap.Alert = AlertNoSelection
		f.mu.Unlock()
		return f.Snapshot(), nil
	}
	req := AnswerRequest{QuizID: f.snap.Quiz.ID, SelectedIndex: *f.snap.Selected}
	f.mu.Unlock()

	res, err := f.svc.Submit(f.scope.Context(), f.classID, req)
	f.scope.Do(func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.snap.State != Answering { // closed meanwhile
			return
		}
		if err != nil {
			f.warn("submitting answer", err)
			if core.IsAuthError(err) {
				f.snap.State = Closed
				f.snap.Redirect = session.LoginPath
				return
			}
			f.snap.Alert = AlertSubmitFailed
			return
		}
		f.snap.State = Answered
		f.snap.Result = &res
		f.snap.Alert = ""
	})
	return f.Snapshot(), nil
}

// Next resets the selection and the result and goes back to loading.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snap.State != Answered {
		return ErrInvalidTransition
	}
	f.snap = Snapshot{State: Loading}
	return nil
}

// Close leaves the quiz for the class dashboard and drops pending completions.
func (f *Flow) Close() Snapshot {
	f.mu.Lock()
	if f.snap.State != Closed {
		f.snap.State = Closed
		f.snap.Redirect = session.DashboardPath(f.classID)
		f.snap.Alert = ""
	}
	f.mu.Unlock()

	f.scope.Unmount()
	return f.Snapshot()
}

func (f *Flow) expect(state State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap.State != state {
		return ErrInvalidTransition
	}
	return nil
}

func (f *Flow) warn(msg string, err error) {
	if f.logger != nil {
		f.logger.Warn(msg, err)
	}
}
