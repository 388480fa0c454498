package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core/admin"
	"github.com/trezcool/hydrofarm/core/farm"
)

type adminApi struct {
	svc      *farm.Service
	validate *validator.Validate
	now      func() time.Time
}

func registerAdminAPI(g *echo.Group, authed []echo.MiddlewareFunc, opts *Options) {
	api := adminApi{
		svc:      opts.FarmSvc,
		validate: opts.Validate,
		now:      opts.Now,
	}

	ag := g.Group("/admin", append(authed, adminMiddleware())...)

	ag.GET("/classes", api.queryClasses)
	ag.POST("/classes", api.createClass)
	ag.PUT("/classes/:id", api.updateClass)
	ag.DELETE("/classes/:id", api.destroyClass)

	ag.GET("/hydro_beds", api.queryBeds)
	ag.POST("/hydro_beds", api.createBed)
	ag.PUT("/hydro_beds/:id", api.updateBed)
	ag.DELETE("/hydro_beds/:id", api.destroyBed)
}

// Handlers

func (api *adminApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.Classes()
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *adminApi) createClass(ctx echo.Context) error {
	var data admin.ClassForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.CreateClass(data, api.now())
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *adminApi) updateClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data admin.ClassForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.UpdateClass(id, data, api.now())
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *adminApi) destroyClass(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteClass(id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) queryBeds(ctx echo.Context) error {
	beds, err := api.svc.HydroBeds()
	if err != nil {
		return errors.Wrap(err, "querying beds")
	}
	return ctx.JSON(http.StatusOK, beds)
}

func (api *adminApi) createBed(ctx echo.Context) error {
	var data admin.HydroBedForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HydroBedForm")
	}
	data.Status = "" // new beds always start active
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bed, err := api.svc.CreateHydroBed(data)
	if err != nil {
		return errors.Wrap(err, "creating bed")
	}
	return ctx.JSON(http.StatusCreated, bed)
}

func (api *adminApi) updateBed(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data admin.HydroBedForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HydroBedForm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	bed, err := api.svc.UpdateHydroBed(id, data)
	if err != nil {
		return errors.Wrap(err, "updating bed")
	}
	return ctx.JSON(http.StatusOK, bed)
}

func (api *adminApi) destroyBed(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteHydroBed(id); err != nil {
		return errors.Wrap(err, "deleting bed")
	}
	return ctx.NoContent(http.StatusNoContent)
}
