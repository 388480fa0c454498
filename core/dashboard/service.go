package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/todo"
)

type Service struct {
	backend core.Backend
}

var _ todo.API = (*Service)(nil)

func NewService(backend core.Backend) *Service {
	return &Service{backend: backend}
}

func (svc *Service) Fetch(ctx context.Context, classID int) (Dashboard, error) {
	var dash Dashboard
	err := svc.backend.Do(ctx, http.MethodGet, fmt.Sprintf("/classes/%d/dashboard", classID), nil, &dash)
	return dash, errors.Wrap(err, "fetching dashboard")
}

func (svc *Service) Graphs(ctx context.Context, classID int, rng Range) (Graph, error) {
	if rng == "" {
		rng = Range24h
	}
	if !rng.Valid() {
		return Graph{}, core.NewValidationError(
			errors.Errorf("invalid range %q", rng),
			core.FieldError{Field: "range", Error: "range must be one of [24h 7d]"},
		)
	}

	var graph Graph
	err := svc.backend.Do(
		ctx,
		http.MethodGet,
		fmt.Sprintf("/classes/%d/graphs", classID),
		nil,
		&graph,
		core.WithQuery(url.Values{"range": {string(rng)}}),
	)
	return graph, errors.Wrap(err, "fetching graphs")
}

func (svc *Service) UpdateTodo(ctx context.Context, classID, todoID int, completed bool) (todo.Todo, error) {
	var t todo.Todo
	err := svc.backend.Do(
		ctx,
		http.MethodPatch,
		fmt.Sprintf("/classes/%d/todos/%d", classID, todoID),
		UpdateTodoRequest{IsCompleted: completed},
		&t,
	)
	return t, errors.Wrap(err, "updating to-do")
}

// Todos fetches the dashboard and returns its to-do list.
func (svc *Service) Todos(ctx context.Context, classID int) ([]todo.Todo, error) {
	dash, err := svc.Fetch(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dash.Todos, nil
}
