package admin

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	"github.com/trezcool/hydrofarm/core/view"
)

type Tab string

const (
	TabClasses Tab = "classes"
	TabBeds    Tab = "beds"
)

var ErrUnknownTab = errors.New("unknown admin tab")

// Page is the mounted admin settings page. Each tab keeps a cache that is refreshed when
// the tab is activated and patched after every successful mutation.
type Page struct {
	Decision session.Decision
	Info     Info

	svc   *Service
	scope *view.Scope

	mu      sync.RWMutex
	tab     Tab
	classes []Class
	beds    []HydroBed
}

// LoadPage runs the admin guard then activates the classes tab.
func LoadPage(scope *view.Scope, svc *Service, guard *session.Guard) (*Page, error) {
	page := &Page{Decision: guard.Admin(), svc: svc, scope: scope}
	if !page.Decision.Allowed() {
		return page, nil
	}
	id := page.Decision.Session.Identity
	page.Info = Info{ID: id.ID, Name: id.Name, SchoolName: id.SchoolName}
	return page, page.Activate(TabClasses)
}

func (p *Page) Tab() Tab {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tab
}

// Activate switches to tab and reloads its cache.
func (p *Page) Activate(tab Tab) error {
	switch tab {
	case TabClasses:
		classes, err := p.svc.Classes(p.scope.Context())
		if err != nil {
			return p.fail(err)
		}
		p.update(func() {
			p.tab = tab
			p.classes = classes
		})
	case TabBeds:
		beds, err := p.svc.HydroBeds(p.scope.Context())
		if err != nil {
			return p.fail(err)
		}
		p.update(func() {
			p.tab = tab
			p.beds = beds
		})
	default:
		return ErrUnknownTab
	}
	return nil
}

func (p *Page) Classes() []Class {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Class(nil), p.classes...)
}

func (p *Page) HydroBeds() []HydroBed {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]HydroBed(nil), p.beds...)
}

func (p *Page) CreateClass(form ClassForm) (Class, error) {
	class, err := p.svc.CreateClass(p.scope.Context(), form)
	if err != nil {
		return Class{}, p.fail(err)
	}
	p.update(func() { p.classes = append(p.classes, class) })
	return class, nil
}

func (p *Page) UpdateClass(id int, form ClassForm) (Class, error) {
	class, err := p.svc.UpdateClass(p.scope.Context(), id, form)
	if err != nil {
		return Class{}, p.fail(err)
	}
	p.update(func() {
		for i := range p.classes {
			if p.classes[i].ID == id {
				p.classes[i] = class
			}
		}
	})
	return class, nil
}

func (p *Page) DeleteClass(id int) error {
	if err := p.svc.DeleteClass(p.scope.Context(), id); err != nil {
		return p.fail(err)
	}
	p.update(func() {
		classes := p.classes[:0]
		for _, c := range p.classes {
			if c.ID != id {
				classes = append(classes, c)
			}
		}
		p.classes = classes
	})
	return nil
}

func (p *Page) CreateHydroBed(form HydroBedForm) (HydroBed, error) {
	bed, err := p.svc.CreateHydroBed(p.scope.Context(), form)
	if err != nil {
		return HydroBed{}, p.fail(err)
	}
	p.update(func() { p.beds = append(p.beds, bed) })
	return bed, nil
}

func (p *Page) UpdateHydroBed(id int, form HydroBedForm) (HydroBed, error) {
	bed, err := p.svc.UpdateHydroBed(p.scope.Context(), id, form)
	if err != nil {
		return HydroBed{}, p.fail(err)
	}
	p.update(func() {
		for i := range p.beds {
			if p.beds[i].ID == id {
				p.beds[i] = bed
			}
		}
	})
	return bed, nil
}

func (p *Page) DeleteHydroBed(id int) error {
	if err := p.svc.DeleteHydroBed(p.scope.Context(), id); err != nil {
		return p.fail(err)
	}
	p.update(func() {
		beds := p.beds[:0]
		for _, b := range p.beds {
			if b.ID != id {
				beds = append(beds, b)
			}
		}
		p.beds = beds
	})
	return nil
}

// update mutates the caches unless the page was unmounted.
func (p *Page) update(fn func()) {
	p.scope.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		fn()
	})
}

func (p *Page) fail(err error) error {
	if core.IsAuthError(err) {
		p.update(func() {
			p.Decision = session.Decision{Action: session.RedirectLogin, Path: session.LoginPath, Replace: true}
		})
	}
	return err
}
