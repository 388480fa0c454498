package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
	"github.com/trezcool/hydrofarm/core/view"
	"github.com/trezcool/hydrofarm/services/backend"
	"github.com/trezcool/hydrofarm/tests"
)

var validate, translator = core.NewValidator()

type wireCall struct {
	method, path, override, field string
}

// adminServer serves the class endpoints and records what reached the wire.
type adminServer struct {
	mu      sync.Mutex
	calls   []wireCall
	classes map[int]Class
	nextID  int
	fail    bool
}

func newAdminServer() *adminServer {
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &adminServer{
		classes: map[int]Class{
			7: {ID: 7, Name: "Sunflower", Code: "ABC123", CreatedAt: created},
			9: {ID: 9, Name: "Tulip", Code: "XYZ789", CreatedAt: created},
		},
		nextID: 10,
	}
}

func (as *adminServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	as.mu.Lock()
	defer as.mu.Unlock()

	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	call := wireCall{method: r.Method, path: r.URL.Path, override: r.Header.Get("X-HTTP-Method-Override")}
	if m, ok := body["_method"].(string); ok {
		call.field = m
	}
	as.calls = append(as.calls, call)

	if as.fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	method := r.Method
	if call.override != "" {
		method = call.override
	}
	name, _ := body["name"].(string)

	switch {
	case r.URL.Path == "/admin/classes" && method == http.MethodGet:
		list := make([]Class, 0, len(as.classes))
		for _, id := range []int{7, 9, 10, 11} {
			if c, ok := as.classes[id]; ok {
				list = append(list, c)
			}
		}
		_ = json.NewEncoder(w).Encode(list)
	case r.URL.Path == "/admin/classes" && method == http.MethodPost:
		c := Class{ID: as.nextID, Name: name, Code: "NEW" + strconv.Itoa(as.nextID), CreatedAt: time.Now().UTC()}
		as.classes[c.ID] = c
		as.nextID++
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	case strings.HasPrefix(r.URL.Path, "/admin/classes/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/admin/classes/"))
		c, ok := as.classes[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch method {
		case http.MethodPut:
			c.Name = name
			as.classes[id] = c
			_ = json.NewEncoder(w).Encode(c)
		case http.MethodDelete:
			delete(as.classes, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (as *adminServer) lastCall() wireCall {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.calls[len(as.calls)-1]
}

func (as *adminServer) callCount() int {
	as.mu.Lock()
	defer as.mu.Unlock()
	return len(as.calls)
}

func setup(t *testing.T, verbs backendsvc.VerbStrategy) (*adminServer, *Page) {
	as := newAdminServer()
	srv := httptest.NewServer(as)
	t.Cleanup(srv.Close)

	sess, _ := testutil.NewSession(t, session.RoleAdmin, 1, "Ms. Tanaka")
	svc := NewService(testutil.NewClient(srv, sess, verbs), validate)

	scope := view.NewScope(context.Background())
	t.Cleanup(scope.Unmount)
	page, err := LoadPage(scope, svc, session.NewGuard(sess))
	require.NoError(t, err)
	require.True(t, page.Decision.Allowed())
	return as, page
}

func TestPage_classes(t *testing.T) {
	verbs := []struct {
		name         string
		strategy     backendsvc.VerbStrategy
		wantUpdate   wireCall
		wantDelete   wireCall
		wantCreation wireCall
	}{
		{
			name:         "direct",
			strategy:     backendsvc.DirectVerbs{},
			wantCreation: wireCall{method: "POST", path: "/admin/classes"},
			wantUpdate:   wireCall{method: "PUT", path: "/admin/classes/9"},
			wantDelete:   wireCall{method: "DELETE", path: "/admin/classes/7"},
		},
		{
			name:         "override",
			strategy:     backendsvc.NewMethodOverride("", "", nil),
			wantCreation: wireCall{method: "POST", path: "/admin/classes"},
			wantUpdate:   wireCall{method: "POST", path: "/admin/classes/9", override: "PUT", field: "PUT"},
			wantDelete:   wireCall{method: "POST", path: "/admin/classes/7", override: "DELETE", field: "DELETE"},
		},
	}
	for _, tt := range verbs {
		t.Run(tt.name, func(t *testing.T) {
			as, page := setup(t, tt.strategy)
			assert.Equal(t, TabClasses, page.Tab())
			assert.Equal(t, Info{ID: 1, Name: "Ms. Tanaka"}, page.Info)
			require.Len(t, page.Classes(), 2)

			created, err := page.CreateClass(ClassForm{Name: "  Rose  "})
			require.NoError(t, err)
			assert.Equal(t, "Rose", created.Name)
			assert.Equal(t, tt.wantCreation, as.lastCall())

			updated, err := page.UpdateClass(9, ClassForm{Name: "Tulip B"})
			require.NoError(t, err)
			assert.Equal(t, "Tulip B", updated.Name)
			assert.Equal(t, tt.wantUpdate, as.lastCall())

			require.NoError(t, page.DeleteClass(7))
			assert.Equal(t, tt.wantDelete, as.lastCall())

			names := make([]string, 0)
			for _, c := range page.Classes() {
				names = append(names, c.Name)
			}
			assert.Equal(t, []string{"Tulip B", "Rose"}, names, "cache patched after each mutation")
		})
	}
}

func TestPage_failureLeavesCache(t *testing.T) {
	as, page := setup(t, backendsvc.DirectVerbs{})
	before := page.Classes()

	as.mu.Lock()
	as.fail = true
	as.mu.Unlock()

	_, err := page.CreateClass(ClassForm{Name: "Rose"})
	assert.Error(t, err)
	assert.Error(t, page.DeleteClass(7))
	assert.Equal(t, before, page.Classes())
}

func TestPage_validation(t *testing.T) {
	as, page := setup(t, backendsvc.DirectVerbs{})
	calls := as.callCount()

	_, err := page.CreateClass(ClassForm{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"name": "this field is required"}, core.FieldErrors(err, translator))

	_, err = page.UpdateHydroBed(1, HydroBedForm{ClassID: 7, Name: "Bed", DeviceID: "dev-1", Status: "broken"})
	require.Error(t, err)
	assert.Contains(t, core.FieldErrors(err, translator), "status")

	_, err = page.UpdateHydroBed(1, HydroBedForm{ClassID: 7, Name: "Bed", DeviceID: "dev-1"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"status": "this field is required"}, core.FieldErrors(err, translator))

	assert.Equal(t, calls, as.callCount(), "invalid forms never reach the backend")
	assert.Equal(t, ErrUnknownTab, page.Activate("settings"))
}

func TestLoadPage_nonAdmin(t *testing.T) {
	sess, _ := testutil.NewSession(t, session.RoleStudent, 7, "Sunflower")
	scope := view.NewScope(context.Background())
	defer scope.Unmount()

	page, err := LoadPage(scope, NewService(nil, nil), session.NewGuard(sess))
	require.NoError(t, err)
	assert.Equal(t, session.Redirect, page.Decision.Action)
	assert.Equal(t, "/classes/7/dashboard", page.Decision.Path)
}

func TestHydroBed_DisplayClassName(t *testing.T) {
	assert.Equal(t, "Sunflower", HydroBed{ClassName: "Sunflower"}.DisplayClassName())
	assert.Equal(t, "Tulip", HydroBed{Class: &ClassRef{Name: "Tulip"}}.DisplayClassName())
	assert.Equal(t, "", HydroBed{}.DisplayClassName())
}
