package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/dashboard"
	"github.com/trezcool/hydrofarm/core/farm"
	"github.com/trezcool/hydrofarm/core/learning"
)

type classApi struct {
	svc      *farm.Service
	validate *validator.Validate
	now      func() time.Time
}

func registerClassAPI(g *echo.Group, authed []echo.MiddlewareFunc, opts *Options) {
	api := classApi{
		svc:      opts.FarmSvc,
		validate: opts.Validate,
		now:      opts.Now,
	}

	cg := g.Group("/classes/:id", append(authed, classMiddleware())...)
	cg.GET("/dashboard", api.dashboard)
	cg.GET("/graphs", api.graphs)
	cg.PATCH("/todos/:todo_id", api.updateTodo, writerMiddleware())
	cg.GET("/learning/today", api.todayQuiz)
	cg.POST("/learning/quiz/answer", api.answer)
}

// classMiddleware validated the id already
func classID(ctx echo.Context) int {
	id, _ := pathID(ctx, "id")
	return id
}

// Handlers

func (api *classApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.Dashboard(classID(ctx), api.now())
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *classApi) graphs(ctx echo.Context) error {
	rng := dashboard.Range(ctx.QueryParam("range"))
	if rng == "" {
		rng = dashboard.Range24h
	}
	if !rng.Valid() {
		return core.NewValidationError(
			errors.New("invalid range"),
			core.FieldError{Field: "range", Error: "range must be one of [24h 7d]"},
		)
	}

	graph, err := api.svc.Graph(classID(ctx), rng, api.now())
	if err != nil {
		return errors.Wrap(err, "building graph")
	}
	return ctx.JSON(http.StatusOK, graph)
}

func (api *classApi) updateTodo(ctx echo.Context) error {
	todoID, err := pathID(ctx, "todo_id")
	if err != nil {
		return err
	}
	var data dashboard.UpdateTodoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTodoRequest")
	}

	td, err := api.svc.UpdateTodo(classID(ctx), todoID, data.IsCompleted)
	if err != nil {
		return errors.Wrap(err, "updating todo")
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *classApi) todayQuiz(ctx echo.Context) error {
	today, err := api.svc.TodayQuiz(classID(ctx), api.now())
	if err != nil {
		return errors.Wrap(err, "getting today's quiz")
	}
	return ctx.JSON(http.StatusOK, today)
}

func (api *classApi) answer(ctx echo.Context) error {
	var data learning.AnswerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	res, err := api.svc.Answer(classID(ctx), data, api.now())
	if err != nil {
		return errors.Wrap(err, "answering quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}
