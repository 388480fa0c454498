package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	LoginPath = "/login"
	AdminPath = "/admin"
)

// Page kinds scoped to a class.
const (
	PageDashboard = "dashboard"
	PageGraphs    = "graphs"
	PageLearning  = "learning"
)

type Action int

const (
	Allow Action = iota
	RedirectLogin
	Redirect
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of a guard check.
type Decision struct {
	Action   Action
	Path     string // redirect target
	Replace  bool   // replace history instead of pushing (no back-navigation loop)
	ReadOnly bool   // mutation controls must render disabled
	Session  Session
}

func (d Decision) Allowed() bool { return d.Action == Allow }

// Guard verifies the persisted session before an identity-scoped page renders.
type Guard struct {
	ctx *Context
}

func NewGuard(ctx *Context) *Guard {
	return &Guard{ctx: ctx}
}

// Class checks access to a page of the class identified by requestedID.
func (g *Guard) Class(requestedID int) Decision {
	sess, err := g.ctx.Current()
	if err != nil {
		return Decision{Action: RedirectLogin, Path: LoginPath, Replace: true}
	}
	if sess.Role.IsAdmin() {
		return Decision{Action: Redirect, Path: AdminPath, Replace: true, Session: sess}
	}
	if sess.Identity.ID != requestedID {
		return Decision{Action: Redirect, Path: DashboardPath(sess.Identity.ID), Replace: true, Session: sess}
	}
	return Decision{Action: Allow, ReadOnly: sess.Role.ReadOnly(), Session: sess}
}

// Admin checks access to the admin settings page.
func (g *Guard) Admin() Decision {
	sess, err := g.ctx.Current()
	if err != nil {
		return Decision{Action: RedirectLogin, Path: LoginPath, Replace: true}
	}
	if !sess.Role.IsAdmin() {
		return Decision{Action: Redirect, Path: DashboardPath(sess.Identity.ID), Replace: true, Session: sess}
	}
	return Decision{Action: Allow, Session: sess}
}

// Path checks access to any navigable path.
func (g *Guard) Path(path string) Decision {
	route, err := ParsePath(path)
	if err != nil {
		return Decision{Action: RedirectLogin, Path: LoginPath, Replace: true}
	}
	switch {
	case route.Page == "login":
		return Decision{Action: Allow}
	case route.Admin:
		return g.Admin()
	}
	return g.Class(route.ClassID)
}

func DashboardPath(classID int) string { return ClassPath(classID, PageDashboard) }

func ClassPath(classID int, page string) string {
	return fmt.Sprintf("/classes/%d/%s", classID, page)
}

type Route struct {
	ClassID int
	Page    string
	Admin   bool
}

// ParsePath resolves /login, /admin and /classes/{id}/{dashboard|graphs|learning}.
func ParsePath(path string) (Route, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "login":
		return Route{Page: "login"}, nil
	case len(parts) == 1 && parts[0] == "admin":
		return Route{Admin: true, Page: "admin"}, nil
	case len(parts) == 3 && parts[0] == "classes":
		id, err := strconv.Atoi(parts[1])
		if err != nil || id <= 0 {
			return Route{}, errors.Errorf("invalid class id in %q", path)
		}
		switch parts[2] {
		case PageDashboard, PageGraphs, PageLearning:
			return Route{ClassID: id, Page: parts[2]}, nil
		}
	}
	return Route{}, errors.Errorf("unknown path %q", path)
}
