package dashboard

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	"github.com/trezcool/hydrofarm/core/todo"
	"github.com/trezcool/hydrofarm/core/view"
)

type PageDeps struct {
	Service *Service
	Guard   *session.Guard
	Logger  core.Logger

	// to-do syncer notifications
	OnTodoChange func(todo.State)
	OnTodoError  func(error)
}

// Page is a mounted dashboard. Only a page whose Decision is allowed carries data.
type Page struct {
	ClassID   int
	Decision  session.Decision
	Dashboard Dashboard
	Todos     *todo.Syncer

	mu sync.RWMutex // guards Decision once the syncer runs
}

// loginRedirect is returned when the backend rejected the session mid-load.
var loginRedirect = session.Decision{Action: session.RedirectLogin, Path: session.LoginPath, Replace: true}

// LoadPage runs the guard for classID then fetches the dashboard under scope.
// An auth failure returns the error along with a page redirecting to the login.
func LoadPage(scope *view.Scope, deps PageDeps, classID int) (*Page, error) {
	page := &Page{ClassID: classID, Decision: deps.Guard.Class(classID)}
	if !page.Decision.Allowed() {
		return page, nil
	}

	dash, err := deps.Service.Fetch(scope.Context(), classID)
	if err != nil {
		if core.IsAuthError(err) {
			page.Decision = loginRedirect
		}
		return page, err
	}

	page.Dashboard = dash
	page.Dashboard.Beds = DisplayBeds(dash.Beds)
	page.Todos = todo.NewSyncer(dash.Todos, todo.Options{
		ClassID:  classID,
		ReadOnly: page.Decision.ReadOnly,
		API:      deps.Service,
		Scope:    scope,
		Logger:   deps.Logger,
		OnChange: deps.OnTodoChange,
		OnError: func(err error) {
			if core.IsAuthError(err) {
				scope.Do(func() {
					page.mu.Lock()
					page.Decision = loginRedirect
					page.mu.Unlock()
				})
			}
			if deps.OnTodoError != nil {
				deps.OnTodoError(err)
			}
		},
	})
	return page, nil
}

// Route returns the current decision: a to-do update rejected with 401 turns it into a login redirect.
func (p *Page) Route() session.Decision {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Decision
}

// ReadOnly reports whether mutation controls must render disabled.
func (p *Page) ReadOnly() bool {
	return p.Route().ReadOnly
}

type GraphDeps struct {
	Service  *Service
	Guard    *session.Guard
	Location *time.Location
	Now      func() time.Time
}

// GraphPage is a mounted sensor history page.
type GraphPage struct {
	ClassID  int
	Decision session.Decision
	Graph    Graph
	Current  *Sensors // latest readings of the first bed, nil when the class has none
}

func LoadGraphPage(scope *view.Scope, deps GraphDeps, classID int, rng Range) (*GraphPage, error) {
	page := &GraphPage{ClassID: classID, Decision: deps.Guard.Class(classID)}
	if !page.Decision.Allowed() {
		return page, nil
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	graph, err := deps.Service.Graphs(scope.Context(), classID, rng)
	if err != nil {
		return page, page.fail(err)
	}
	page.Graph = NormalizeGraph(graph, deps.Location, now())

	dash, err := deps.Service.Fetch(scope.Context(), classID)
	if err != nil {
		return page, page.fail(err)
	}
	if len(dash.Beds) > 0 {
		page.Current = &dash.Beds[0].Sensors
	}
	return page, nil
}

func (p *GraphPage) fail(err error) error {
	if core.IsAuthError(err) {
		p.Decision = loginRedirect
	}
	return errors.Wrap(err, "loading graph page")
}
